package fixture

import (
	"github.com/roach88/renderplan/internal/engine"
	"github.com/roach88/renderplan/internal/timecode"
)

// Segment is a half-open interval of the timeline with its attachment.
// Tickets are built eagerly, one per attached port, and shared by clones.
type Segment struct {
	span       timecode.Interval
	attachment NodeGraphAttachment
	tickets    []*engine.JobTicket
}

// NewSegment creates a segment covering span.
func NewSegment(span timecode.Interval, attachment NodeGraphAttachment) *Segment {
	tickets := make([]*engine.JobTicket, attachment.Len())
	for i := range tickets {
		tickets[i] = engine.NewJobTicket(attachment.At(i))
	}
	return &Segment{span: span, attachment: attachment, tickets: tickets}
}

// EmptySegment creates a filler segment without attachment.
func EmptySegment(span timecode.Interval) *Segment {
	return &Segment{span: span}
}

// withSpan copies s onto new bounds, sharing attachment and tickets.
func (s *Segment) withSpan(span timecode.Interval) *Segment {
	return &Segment{span: span, attachment: s.attachment, tickets: s.tickets}
}

func (s *Segment) Start() timecode.Time { return s.span.Start }
func (s *Segment) After() timecode.Time { return s.span.After }
func (s *Segment) Span() timecode.Interval { return s.span }
func (s *Segment) Contains(t timecode.Time) bool { return s.span.Contains(t) }

// Attachment returns the attached exit nodes.
func (s *Segment) Attachment() NodeGraphAttachment { return s.attachment }

// IsEmpty reports whether the segment produces only NOP tickets.
func (s *Segment) IsEmpty() bool { return s.attachment.IsEmpty() }

// JobTicket returns the ticket for port idx; NOP if nothing is attached.
func (s *Segment) JobTicket(idx int) *engine.JobTicket {
	if idx < 0 || idx >= len(s.tickets) {
		return engine.NOP
	}
	return s.tickets[idx]
}

// String renders "[start_after[" for attached and "[start~after[" for
// empty segments.
func (s *Segment) String() string {
	sep := "_"
	if s.IsEmpty() {
		sep = "~"
	}
	return "[" + s.span.Start.String() + sep + s.span.After.String() + "["
}
