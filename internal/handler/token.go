package handler

import (
	"strconv"
	"strings"

	"github.com/saigon-transit/service-route/internal/domain/conversation"
)

// Callback tokens on the wire. They are decoded into a
// conversation.Selection exactly once, here; nothing past this file ever
// inspects the raw strings.
const (
	tokenPickOrigin = "PICK_FROM_"
	tokenPickDest   = "PICK_TO_"
	tokenBackOrigin = "BACK_FROM"
	tokenBackDest   = "BACK_TO"
	tokenModeCar    = "MODE_CAR"
	tokenModeSkip   = "MODE_SKIP"
)

// EncodeSelection renders a selection as a callback token.
func EncodeSelection(sel conversation.Selection) string {
	switch sel.Kind {
	case conversation.SelectOrigin:
		return tokenPickOrigin + strconv.Itoa(sel.Index)
	case conversation.SelectDest:
		return tokenPickDest + strconv.Itoa(sel.Index)
	case conversation.BackOrigin:
		return tokenBackOrigin
	case conversation.BackDest:
		return tokenBackDest
	case conversation.ModeConfirm:
		return tokenModeCar
	case conversation.ModeSkip:
		return tokenModeSkip
	default:
		return ""
	}
}

// DecodeSelection parses a callback token. Anything unrecognized maps to
// SelectionUnknown, which the flow rejects with a reprompt.
func DecodeSelection(token string) conversation.Selection {
	switch token {
	case tokenBackOrigin:
		return conversation.Selection{Kind: conversation.BackOrigin}
	case tokenBackDest:
		return conversation.Selection{Kind: conversation.BackDest}
	case tokenModeCar:
		return conversation.Selection{Kind: conversation.ModeConfirm}
	case tokenModeSkip:
		return conversation.Selection{Kind: conversation.ModeSkip}
	}

	if rest, ok := strings.CutPrefix(token, tokenPickOrigin); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 {
			return conversation.Selection{Kind: conversation.SelectOrigin, Index: i}
		}
	}
	if rest, ok := strings.CutPrefix(token, tokenPickDest); ok {
		if i, err := strconv.Atoi(rest); err == nil && i >= 0 {
			return conversation.Selection{Kind: conversation.SelectDest, Index: i}
		}
	}
	return conversation.Selection{Kind: conversation.SelectionUnknown}
}
