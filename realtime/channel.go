package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"spaces-client/models"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

var ErrNotConnected = errors.New("realtime channel is not connected")

// link is one live websocket connection and its pumps.
type link struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (l *link) shutdown() {
	l.once.Do(func() {
		close(l.done)
		l.conn.Close()
	})
}

// Channel is the session's single realtime connection. Rooms are joined and
// left explicitly; joining a room never leaves the previous one.
type Channel struct {
	url     string
	dialer  *websocket.Dialer
	limiter *rate.Limiter
	log     zerolog.Logger

	mu    sync.RWMutex
	link  *link
	rooms map[models.ID]bool

	handlersMu   sync.RWMutex
	onMessage    []func(NewMessage)
	onEvent      []func(Event)
	handlers     map[Kind][]func(Event)
	onDisconnect []func(error)
}

type Option func(*Channel)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Channel) { c.log = l }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// WithEmitRate caps outbound emits at perSecond with the given burst.
func WithEmitRate(perSecond float64, burst int) Option {
	return func(c *Channel) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func New(wsURL string, opts ...Option) *Channel {
	c := &Channel{
		url:      wsURL,
		dialer:   websocket.DefaultDialer,
		limiter:  rate.NewLimiter(rate.Limit(5), 10),
		log:      zerolog.Nop(),
		rooms:    make(map[models.ID]bool),
		handlers: make(map[Kind][]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server once per session. Calling it while connected is a no-op.
func (c *Channel) Connect(ctx context.Context, token string, userID models.ID, nickname string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.link != nil {
		return nil
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("invalid websocket url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("user_id", userID.String())
	q.Set("nickname", nickname)
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial failed: %w", err)
	}

	l := &link{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.link = l
	c.rooms = make(map[models.ID]bool)

	go c.writePump(l)
	go c.readPump(l)

	c.log.Info().Str("user_id", userID.String()).Msg("[ws] connected")
	return nil
}

func (c *Channel) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.link != nil
}

// Rooms lists the rooms joined on the current connection.
func (c *Channel) Rooms() []models.ID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ID, 0, len(c.rooms))
	for id := range c.rooms {
		out = append(out, id)
	}
	return out
}

// Close tears down the connection without firing disconnect handlers.
func (c *Channel) Close() error {
	c.mu.Lock()
	l := c.link
	c.link = nil
	c.rooms = make(map[models.ID]bool)
	c.mu.Unlock()
	if l == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	l.shutdown()
	c.log.Info().Msg("[ws] closed")
	return nil
}

func (c *Channel) JoinRoom(ctx context.Context, roomID, userID models.ID, nickname string) error {
	err := c.Emit(ctx, emitJoinRoom, map[string]any{
		"room_id":  roomID.String(),
		"user_id":  userID,
		"nickname": nickname,
	})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.rooms[roomID] = true
	c.mu.Unlock()
	return nil
}

func (c *Channel) LeaveRoom(ctx context.Context, roomID, userID models.ID) error {
	c.mu.Lock()
	delete(c.rooms, roomID)
	c.mu.Unlock()
	return c.Emit(ctx, emitLeaveRoom, map[string]any{
		"room_id": roomID.String(),
		"user_id": userID,
	})
}

func (c *Channel) SendMessage(ctx context.Context, roomID, userID models.ID, nickname, text string) error {
	return c.Emit(ctx, emitSendMessage, map[string]any{
		"room_id":  roomID.String(),
		"user_id":  userID,
		"nickname": nickname,
		"message":  text,
	})
}

func (c *Channel) EditMessage(ctx context.Context, roomID, messageID models.ID, content string, userID models.ID) error {
	return c.Emit(ctx, emitEditMessage, map[string]any{
		"room_id":    roomID.String(),
		"message_id": messageID,
		"content":    content,
		"user_id":    userID,
	})
}

func (c *Channel) DeleteMessage(ctx context.Context, roomID, messageID, userID models.ID) error {
	return c.Emit(ctx, emitDeleteMessage, map[string]any{
		"room_id":    roomID.String(),
		"message_id": messageID,
		"user_id":    userID,
	})
}

// Emit queues a named event for the write pump. It fails fast when the
// channel is down and waits on the emit limiter otherwise.
func (c *Channel) Emit(ctx context.Context, eventType string, payload any) error {
	c.mu.RLock()
	l := c.link
	c.mu.RUnlock()
	if l == nil {
		return ErrNotConnected
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	data, err := json.Marshal(Envelope{Type: eventType, Payload: body, Ref: uuid.NewString()})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	select {
	case l.send <- data:
		return nil
	case <-l.done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnMessage registers a handler for new_message events.
func (c *Channel) OnMessage(fn func(NewMessage)) {
	c.handlersMu.Lock()
	c.onMessage = append(c.onMessage, fn)
	c.handlersMu.Unlock()
}

// On registers a handler for one event kind.
func (c *Channel) On(kind Kind, fn func(Event)) {
	c.handlersMu.Lock()
	c.handlers[kind] = append(c.handlers[kind], fn)
	c.handlersMu.Unlock()
}

// OnEvent registers a handler that sees every decoded event.
func (c *Channel) OnEvent(fn func(Event)) {
	c.handlersMu.Lock()
	c.onEvent = append(c.onEvent, fn)
	c.handlersMu.Unlock()
}

// OnDisconnect registers a handler run when the server drops the connection.
func (c *Channel) OnDisconnect(fn func(error)) {
	c.handlersMu.Lock()
	c.onDisconnect = append(c.onDisconnect, fn)
	c.handlersMu.Unlock()
}

func (c *Channel) dispatch(ev Event) {
	c.handlersMu.RLock()
	onMessage := c.onMessage
	onEvent := c.onEvent
	byKind := c.handlers[ev.Kind()]
	c.handlersMu.RUnlock()

	if nm, ok := ev.(NewMessage); ok {
		for _, fn := range onMessage {
			fn(nm)
		}
	}
	for _, fn := range byKind {
		fn(ev)
	}
	for _, fn := range onEvent {
		fn(ev)
	}
}

func (c *Channel) dropped(l *link, err error) {
	c.mu.Lock()
	current := c.link == l
	if current {
		c.link = nil
		c.rooms = make(map[models.ID]bool)
	}
	c.mu.Unlock()
	if !current {
		return
	}

	c.log.Warn().Err(err).Msg("[ws] connection lost")
	c.handlersMu.RLock()
	handlers := c.onDisconnect
	c.handlersMu.RUnlock()
	for _, fn := range handlers {
		fn(err)
	}
}

func (c *Channel) readPump(l *link) {
	var readErr error
	defer func() {
		l.shutdown()
		c.dropped(l, readErr)
	}()

	l.conn.SetReadLimit(maxMessageSize)
	l.conn.SetReadDeadline(time.Now().Add(pongWait))
	l.conn.SetPongHandler(func(string) error {
		l.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Error().Err(err).Msg("[ws] unexpected close")
			}
			readErr = err
			return
		}

		ev, err := Decode(data)
		if err != nil {
			if errors.Is(err, ErrUnknownEvent) {
				c.log.Debug().Err(err).Msg("[ws] ignoring event")
			} else {
				c.log.Warn().Err(err).Msg("[ws] bad frame")
			}
			continue
		}
		if se, ok := ev.(ServerError); ok {
			c.log.Warn().Str("message", se.Message).Msg("[ws] server error")
		}
		c.dispatch(ev)
	}
}

func (c *Channel) writePump(l *link) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		l.shutdown()
	}()

	for {
		select {
		case <-l.done:
			return
		case message := <-l.send:
			l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Error().Err(err).Msg("[ws] write failed")
				return
			}
		case <-ticker.C:
			l.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Error().Err(err).Msg("[ws] ping failed")
				return
			}
		}
	}
}
