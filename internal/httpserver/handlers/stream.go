package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/linkpreview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkpreview/internal/logger"
	"github.com/MrSnakeDoc/linkpreview/internal/preview"
	"github.com/MrSnakeDoc/linkpreview/internal/utils"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// CardStream pushes the re-rendered fragment over a websocket after every
// state change. The stream ends when the client leaves or the card is
// destroyed, the latter with a going-away close frame.
func CardStream(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, ok := cardDefinition(d)
		if !ok {
			writeError(w, http.StatusInternalServerError, "card element not defined")
			return
		}
		card, id, ok := hostedCard(d, w, r)
		if !ok {
			return
		}
		lang := requestLang(d, r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already answered the client.
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		log := d.Logger.With(logger.String("card", id))
		defer utils.CloseWith(conn, func(err error) {
			log.Debug("websocket close failed", logger.Error(err))
		})

		// Coalesce bursts: the writer always renders the latest state.
		changed := make(chan struct{}, 1)
		unsubscribe := card.Subscribe(func(preview.State) {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()

		// Drain client frames so control messages are processed and a
		// disconnect is noticed.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		push := func() error {
			html, err := def.Renderer.RenderString(card.State(), lang)
			if err != nil {
				return err
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			return conn.WriteMessage(websocket.TextMessage, []byte(html))
		}

		if err := push(); err != nil {
			log.Debug("initial push failed", logger.Error(err))
			return
		}

		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-changed:
				if err := push(); err != nil {
					log.Debug("push failed", logger.Error(err))
					return
				}
			case <-card.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "card destroyed"),
					time.Now().Add(streamWriteWait))
				return
			case <-ticker.C:
				// An open stream counts as a reader.
				d.Host.Touch(id)
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
					return
				}
			case <-gone:
				return
			case <-r.Context().Done():
				return
			}
		}
	}
}
