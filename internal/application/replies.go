package application

import (
	"fmt"
	"math"

	"github.com/saigon-transit/service-route/internal/domain/conversation"
	"github.com/saigon-transit/service-route/internal/domain/place"
)

// Button is one selectable option. The transport layer encodes Action into
// whatever token format it needs; the service never sees token strings.
type Button struct {
	Label  string
	Action conversation.Selection
}

// Message is one outbound message, optionally carrying a button keyboard.
type Message struct {
	Text               string
	Keyboard           [][]Button
	Markdown           bool
	DisableLinkPreview bool
}

// Reply is everything the transport should render in response to one
// inbound event. Ack collapses the keyboard message a button press came
// from; Notice is a short popup acknowledgement for the press itself.
type Reply struct {
	Ack      string
	Notice   string
	Messages []Message
}

func textReply(text string) Reply {
	return Reply{Messages: []Message{{Text: text}}}
}

// User-facing copy. The display locale is fixed; see the geocoder's
// accept-language setting.
const (
	msgStart = "👋 *Xin chào!*\n" +
		"Mình là bot hỗ trợ tìm đường và ước tính thời gian đến (ETA) tại TPHCM.\n\n" +
		"📌 *Cách dùng nhanh:*\n" +
		"- Gõ /route để bắt đầu\n" +
		"- Gõ /help để xem hướng dẫn\n" +
		"- Khi đang thao tác, gõ /cancel để hủy"

	msgHelp = "📖 *Hướng dẫn sử dụng*\n" +
		"  1. Gõ /route để bắt đầu\n" +
		"  2. Nhập điểm đi bằng chữ (ví dụ: tên địa điểm, số nhà,…)\n" +
		"  3. Chọn điểm đi từ danh sách gợi ý\n" +
		"  4. Nhập điểm đến và chọn điểm đến\n" +
		"  5. Chọn phương tiện (hiện tại: Ô tô) và nhận kết quả\n\n" +
		" *Ghi chú:*\n" +
		"- ETA là thời gian ước tính dựa trên hệ thống định tuyến (OSRM)\n" +
		"- Gõ /cancel để hủy thao tác bất kỳ lúc nào"

	msgFlowEntry     = "Bắt đầu tìm đường.\nBạn đi từ đâu? (Nhập địa điểm xuất phát bằng chữ)"
	msgFlowActive    = "Bạn đang trong một phiên tìm đường. Gõ /cancel để hủy trước khi bắt đầu phiên mới."
	msgCancelled     = "Đã hủy. Gõ /route để bắt đầu lại."
	msgOutsideFlow   = "Gõ /route để bắt đầu tìm đường, hoặc /help để xem hướng dẫn."
	msgNoResults     = "Không tìm thấy địa điểm. Bạn nhập rõ hơn nhé (VD: tên địa điểm, số nhà, đường, phường, quận, TP.HCM)."
	msgPickOrigin    = "Mình tìm thấy các địa điểm sau. Bạn chọn đúng điểm xuất phát:"
	msgPickDest      = "Mình tìm thấy các địa điểm sau. Bạn chọn đúng điểm đến:"
	msgAskOrigin     = "Bạn đi từ đâu? (Nhập địa điểm xuất phát)"
	msgAskDest       = "Bạn muốn đến đâu? (Nhập địa điểm đích)"
	msgTextOnly      = "Mình chỉ nhận địa điểm dạng chữ. Bạn nhập điểm %s bằng text nhé."
	msgUseButtons    = "Vui lòng bấm chọn một địa điểm bên dưới hoặc bấm ‘Nhập lại’."
	msgUseModeKeys   = "Vui lòng bấm chọn ‘Ô tô’ hoặc ‘Bỏ qua’."
	msgInvalidChoice = "Lựa chọn không hợp lệ. Bạn chọn lại trong danh sách bên trên nhé."
	msgInvalidNotice = "Lựa chọn không hợp lệ"
	msgPickMode      = "🚦 Chọn phương tiện (bản demo hiện chỉ hỗ trợ Ô tô):"
	msgRouteFailed   = "Xin lỗi, mình không tính được lộ trình lúc này (OSRM lỗi/không có tuyến). Bạn thử lại với /route nhé."

	ackOriginChosen = "📍 Đã chọn điểm xuất phát: %s"
	ackDestChosen   = "📍 Đã chọn điểm đến: %s"
	ackOriginReset  = "↩️ Ok, bạn nhập lại điểm xuất phát nhé."
	ackDestReset    = "↩️ Ok, bạn nhập lại điểm đến nhé."
	ackModeCar      = "Đã chọn phương tiện: 🚗"
	ackModeSkipped  = "Bỏ qua chọn phương tiện (mặc định 🚗)"
)

// candidateKeyboard renders one button per candidate plus a re-enter row.
func candidateKeyboard(candidates []place.Candidate, selectKind, backKind conversation.SelectionKind) [][]Button {
	rows := make([][]Button, 0, len(candidates)+1)
	for i, c := range candidates {
		rows = append(rows, []Button{{
			Label:  c.Label,
			Action: conversation.Selection{Kind: selectKind, Index: i},
		}})
	}
	rows = append(rows, []Button{{
		Label:  "Nhập lại",
		Action: conversation.Selection{Kind: backKind},
	}})
	return rows
}

func modeKeyboard() [][]Button {
	return [][]Button{{
		{Label: "🚗 Ô tô", Action: conversation.Selection{Kind: conversation.ModeConfirm}},
		{Label: "⏭️ Bỏ qua (mặc định Ô tô)", Action: conversation.Selection{Kind: conversation.ModeSkip}},
	}}
}

// formatResult renders the final route summary: base names only, kilometers
// to one decimal, minutes rounded to the nearest integer.
func formatResult(originLabel, destLabel string, result conversation.RouteResult) string {
	from := place.BaseName(originLabel)
	to := place.BaseName(destLabel)

	distanceKm := result.DistanceMeters / 1000
	durationMin := int(math.Round(result.DurationSeconds / 60))

	return fmt.Sprintf(
		"✅ *Tuyến đường*\n%s → %s\n\n📐 *%.1f km*   ⏱️ *%d phút*\n🗺️ [Mở chỉ đường trên OSM](%s)\n\n🔁 Gõ /route để tìm tuyến khác hoặc /help",
		from, to, distanceKm, durationMin, result.Link,
	)
}
