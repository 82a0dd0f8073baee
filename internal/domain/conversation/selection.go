package conversation

// SelectionKind enumerates the closed set of button actions a user can take.
// Transport-level callback tokens are decoded into a Selection exactly once
// at the boundary; business logic never inspects raw token strings.
type SelectionKind int

const (
	SelectionUnknown SelectionKind = iota
	SelectOrigin
	SelectDest
	BackOrigin
	BackDest
	ModeConfirm
	ModeSkip
)

// Selection is a decoded button press. Index is meaningful only for
// SelectOrigin and SelectDest.
type Selection struct {
	Kind  SelectionKind
	Index int
}
