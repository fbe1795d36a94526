// Package app is the terminal client: it subscribes to the broadcast hub
// over a websocket and renders the energetic feed, while the input field
// submits new intentions.
package app

import (
	"encoding/json"
	"fmt"
	"net/url"

	"sacred_computing/internal/model"
	"sacred_computing/internal/sacred"
	"sacred_computing/internal/utils/log"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

type (
	App struct {
		app   *tview.Application
		feed  *tview.TextView
		input *tview.InputField

		host string
		conn *websocket.Conn
	}
)

func NewApp(host string) *App {
	return &App{
		app:  tview.NewApplication(),
		host: host,
	}
}

// Run dials the hub and blocks rendering the UI until the app stops.
func (c *App) Run() {
	conn, err := c.dial()
	if err != nil {
		log.Fatal("connect to broadcast hub failed", zap.Error(err))
	}
	c.conn = conn

	go c.listen()
	c.renderUI()
}

func (c *App) Stop() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.app.Stop()
}

func (c *App) dial() (*websocket.Conn, error) {
	u := url.URL{
		Scheme: "ws",
		Host:   c.host,
		Path:   "/ws",
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// blocking function
func (c *App) renderUI() {
	c.feed = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	c.feed.SetBorder(true).SetTitle(" Energetic Feedback ")

	c.input = tview.NewInputField().
		SetLabel("Intention: ").
		SetFieldWidth(0)
	c.input.SetBorder(true).SetTitle(" Broadcast Intention ")

	c.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := c.input.GetText()
		if text == "" {
			return
		}
		c.input.SetText("")

		go func(intention string) {
			if err := c.sendIntention(intention); err != nil {
				c.app.Suspend(func() {
					log.Error("send intention failed", zap.Error(err))
				})
			}
		}(text)
	})

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(c.feed, 0, 1, false).
		AddItem(c.input, 3, 0, true)

	if err := c.app.SetRoot(layout, true).SetFocus(c.input).Run(); err != nil {
		log.Fatal("cannot init app", zap.Error(err))
	}
}

func (c *App) sendIntention(intention string) error {
	return c.conn.WriteJSON(&model.InboundMessage{
		Type: model.TypeIntention,
		Data: model.InboundData{
			Intention: intention,
			Frequency: sacred.SchumannResonance,
		},
	})
}

func (c *App) listen() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug("broadcast web socket closed", zap.Error(err))
			c.conn.Close()
			return
		}

		var msg model.BroadcastMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Error("unmarshal broadcast failed", zap.Error(err))
			continue
		}

		line := renderMessage(&msg)
		c.app.QueueUpdateDraw(func() {
			fmt.Fprint(c.feed, line)
			c.feed.ScrollToEnd()
		})
	}
}

func renderMessage(msg *model.BroadcastMessage) string {
	switch msg.Type {
	case model.TypeSystem:
		data, _ := msg.Data.(map[string]any)
		if errMsg, ok := data["error"].(string); ok {
			return fmt.Sprintf("[red][SYSTEM][-] %s\n", errMsg)
		}
		if text, ok := data["message"].(string); ok {
			return fmt.Sprintf("[purple][SYSTEM][-] %s\n", text)
		}
		return "[purple][SYSTEM][-]\n"
	default:
		body, err := json.Marshal(msg.Data)
		if err != nil {
			body = []byte("{}")
		}
		line := fmt.Sprintf("[green][%s][-] %s\n", msg.Type, body)
		if msg.PacketData != nil {
			line += fmt.Sprintf("[gray]packet: %.40s...[-]\n", *msg.PacketData)
		}
		return line
	}
}
