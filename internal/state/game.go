package state

// MoveSlot holds one participant's sealed move. The handle is opaque here.
type MoveSlot struct {
	Handle    []byte `json:"handle,omitempty"`
	Submitted bool   `json:"submitted"`
}

type Game struct {
	ID          uint64 `json:"id"`
	FirstMover  string `json:"firstMover"`
	SecondMover string `json:"secondMover,omitempty"`

	Stake uint64 `json:"stake"`
	Pot   uint64 `json:"pot"`

	Moves [2]MoveSlot `json:"moves"`

	CreatedAt          int64 `json:"createdAt"`
	MoveDeadline       int64 `json:"moveDeadline"`
	RequestedAt        int64 `json:"requestedAt,omitempty"`
	DecryptionDeadline int64 `json:"decryptionDeadline,omitempty"`

	Requested     bool   `json:"requested"`
	Completed     bool   `json:"completed"`
	CorrelationID string `json:"correlationId,omitempty"`
	OutcomeHandle []byte `json:"outcomeHandle,omitempty"`

	Resolved bool `json:"resolved"`
	// ResultCode is set only once the game is resolved.
	ResultCode *uint64 `json:"resultCode,omitempty"`
	Winner     string  `json:"winner,omitempty"` // empty on draw
	Fee        uint64  `json:"fee"`
	Payout     uint64  `json:"payout"`
	EndedAt    int64   `json:"endedAt,omitempty"`

	Expired  bool `json:"expired"`
	Refunded bool `json:"refunded"`
}

// Result returns the outcome code of a resolved game.
func (g *Game) Result() (uint64, bool) {
	if g.ResultCode == nil {
		return 0, false
	}
	return *g.ResultCode, true
}

func (g *Game) HasSecond() bool { return g.SecondMover != "" }

// Slot returns the move slot index for addr, or -1.
func (g *Game) Slot(addr string) int {
	switch {
	case addr == "":
		return -1
	case addr == g.FirstMover:
		return 0
	case addr == g.SecondMover:
		return 1
	default:
		return -1
	}
}

func (g *Game) BothSubmitted() bool {
	return g.HasSecond() && g.Moves[0].Submitted && g.Moves[1].Submitted
}

// Participants returns the joined addresses in slot order.
func (g *Game) Participants() []string {
	if g.HasSecond() {
		return []string{g.FirstMover, g.SecondMover}
	}
	return []string{g.FirstMover}
}

// DecryptionRequest is a pending oracle job as seen by the decryption
// subsystem. It maps a correlation id back to exactly one game.
type DecryptionRequest struct {
	CorrelationID string   `json:"correlationId"`
	GameID        uint64   `json:"gameId"`
	Handles       [][]byte `json:"handles"`
	RequestedAt   int64    `json:"requestedAt"`
	Consumed      bool     `json:"consumed"`
	Cancelled     bool     `json:"cancelled,omitempty"`
}

func (r *DecryptionRequest) Pending() bool { return !r.Consumed && !r.Cancelled }
