package telegram

// Update is one inbound event from the Bot API.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *IncomingMsg   `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// ChatID returns the conversation an update belongs to, or 0 when it
// carries neither a message nor a callback.
func (u Update) ChatID() int64 {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID
	default:
		return 0
	}
}

// IncomingMsg is an inbound chat message. Text is empty for non-text
// content (photos, stickers, locations, …).
type IncomingMsg struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is an inline-keyboard button press.
type CallbackQuery struct {
	ID      string       `json:"id"`
	Data    string       `json:"data,omitempty"`
	Message *IncomingMsg `json:"message,omitempty"`
}

// InlineKeyboardButton is one selectable button.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboardMarkup is a grid of inline buttons.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendMessageRequest is the payload for sendMessage.
type SendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	ParseMode             string                `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageTextRequest is the payload for editMessageText. Sending no
// reply markup clears the keyboard on the edited message.
type EditMessageTextRequest struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
}

// AnswerCallbackRequest is the payload for answerCallbackQuery.
type AnswerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}
