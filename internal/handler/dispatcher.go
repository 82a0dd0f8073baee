package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/saigon-transit/service-route/internal/application"
	"github.com/saigon-transit/service-route/internal/telegram"
	"go.uber.org/zap"
)

// chatQueueSize bounds the per-chat backlog; a chat flooding the bot drops
// its surplus rather than blocking other chats.
const chatQueueSize = 16

// pollRetryDelay spaces out retries after a failed getUpdates call so a
// broken transport does not turn the poll loop into a hot spin.
const pollRetryDelay = time.Second

// Transport is the slice of the Bot API the dispatcher needs.
type Transport interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (int64, error)
	EditMessageText(ctx context.Context, req telegram.EditMessageTextRequest) error
	AnswerCallbackQuery(ctx context.Context, req telegram.AnswerCallbackRequest) error
}

// Dispatcher feeds transport updates to the flow service. Updates for one
// chat are handled strictly in arrival order by a dedicated worker;
// different chats run fully in parallel.
type Dispatcher struct {
	transport Transport
	flows     *application.FlowService
	logger    *zap.Logger

	mu      sync.Mutex
	ctx     context.Context
	closed  bool
	workers map[int64]chan telegram.Update
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(transport Transport, flows *application.FlowService, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		flows:     flows,
		logger:    logger,
		workers:   make(map[int64]chan telegram.Update),
	}
}

// Run long-polls for updates until the context is cancelled, then waits
// for the chat workers to drain.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.start(ctx)
	defer d.shutdown()

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		updates, err := d.transport.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Warn("failed to fetch updates", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			d.Dispatch(u)
		}
	}
}

// RunWebhook serves webhook-delivered updates only: it parks until the
// context is cancelled, then drains the chat workers. Updates arrive via
// Dispatch from the webhook receiver.
func (d *Dispatcher) RunWebhook(ctx context.Context) error {
	d.start(ctx)
	defer d.shutdown()

	<-ctx.Done()
	return ctx.Err()
}

func (d *Dispatcher) start(ctx context.Context) {
	d.mu.Lock()
	d.ctx = ctx
	d.closed = false
	d.mu.Unlock()
}

func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	d.closed = true
	for _, queue := range d.workers {
		close(queue)
	}
	d.workers = make(map[int64]chan telegram.Update)
	d.mu.Unlock()

	d.wg.Wait()
}

// Dispatch routes one update to its chat's worker, creating the worker on
// first contact. Called by the polling loop and the webhook receiver. The
// enqueue stays under the mutex so it cannot race shutdown's channel close:
// an update either lands on a queue before it closes, or is dropped.
func (d *Dispatcher) Dispatch(update telegram.Update) {
	chatID := update.ChatID()
	if chatID == 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil || d.closed || d.ctx.Err() != nil {
		return
	}
	queue, ok := d.workers[chatID]
	if !ok {
		queue = make(chan telegram.Update, chatQueueSize)
		d.workers[chatID] = queue
		d.wg.Add(1)
		go d.chatWorker(d.ctx, queue)
	}

	select {
	case queue <- update:
	default:
		d.logger.Warn("chat queue full, dropping update", zap.Int64("chat_id", chatID))
	}
}

func (d *Dispatcher) chatWorker(ctx context.Context, queue <-chan telegram.Update) {
	defer d.wg.Done()
	for update := range queue {
		d.handleUpdate(ctx, update)
	}
}

func (d *Dispatcher) handleUpdate(ctx context.Context, update telegram.Update) {
	switch {
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *telegram.IncomingMsg) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	var reply application.Reply
	switch {
	case strings.HasPrefix(text, "/"):
		reply = d.handleCommand(ctx, chatID, text)
	case text != "":
		reply = d.flows.HandleText(ctx, chatID, text)
	default:
		// Photos, stickers, locations and the like carry no text.
		reply = d.flows.HandleNonText(ctx, chatID)
	}

	d.sendMessages(ctx, chatID, reply.Messages)
}

func (d *Dispatcher) handleCommand(ctx context.Context, chatID int64, text string) application.Reply {
	command := strings.Fields(text)[0]
	// Group chats address commands as /route@botname.
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}

	switch command {
	case "/start":
		return d.flows.Greet()
	case "/help":
		return d.flows.Help()
	case "/route":
		return d.flows.StartFlow(ctx, chatID)
	case "/cancel":
		return d.flows.Cancel(ctx, chatID)
	default:
		return d.flows.UnknownCommand()
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cq *telegram.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	sel := DecodeSelection(cq.Data)
	reply := d.flows.HandleSelection(ctx, chatID, sel)

	if err := d.transport.AnswerCallbackQuery(ctx, telegram.AnswerCallbackRequest{
		CallbackQueryID: cq.ID,
		Text:            reply.Notice,
	}); err != nil {
		d.logger.Warn("failed to answer callback", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	// Collapse the keyboard message into a one-line confirmation.
	if reply.Ack != "" {
		if err := d.transport.EditMessageText(ctx, telegram.EditMessageTextRequest{
			ChatID:    chatID,
			MessageID: cq.Message.MessageID,
			Text:      reply.Ack,
		}); err != nil {
			d.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}

	d.sendMessages(ctx, chatID, reply.Messages)
}

func (d *Dispatcher) sendMessages(ctx context.Context, chatID int64, messages []application.Message) {
	for _, m := range messages {
		req := telegram.SendMessageRequest{
			ChatID:                chatID,
			Text:                  m.Text,
			DisableWebPagePreview: m.DisableLinkPreview,
		}
		if m.Markdown {
			req.ParseMode = "Markdown"
		}
		if len(m.Keyboard) > 0 {
			req.ReplyMarkup = encodeKeyboard(m.Keyboard)
		}
		if _, err := d.transport.SendMessage(ctx, req); err != nil {
			d.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func encodeKeyboard(rows [][]application.Button) *telegram.InlineKeyboardMarkup {
	markup := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: make([][]telegram.InlineKeyboardButton, len(rows)),
	}
	for i, row := range rows {
		buttons := make([]telegram.InlineKeyboardButton, len(row))
		for j, b := range row {
			buttons[j] = telegram.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: EncodeSelection(b.Action),
			}
		}
		markup.InlineKeyboard[i] = buttons
	}
	return markup
}
