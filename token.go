package stockdash

// Token identifies one issued request. The zero Token is never issued.
type Token uint64

// Sequence issues monotonically increasing tokens and remembers the latest.
//
// A response is current only if it carries the latest token; anything older
// has been superseded by a newer request or by an Invalidate and must be dropped.
type Sequence struct{ last Token }

// Next issues a new token, superseding every token issued before.
func (s *Sequence) Next() Token {
	s.last++
	return s.last
}

// Invalidate supersedes all issued tokens without issuing a new one.
func (s *Sequence) Invalidate() { s.last++ }

// Current reports whether t is the latest issued token.
func (s *Sequence) Current(t Token) bool { return t != 0 && t == s.last }
