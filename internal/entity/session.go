package entity

import "time"

// Session holds the transient state of one advisory form.
type Session struct {
	ID         string
	Template   CaseTemplate
	Directions *DirectionSet
	Results    *ResultSet
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		Directions: NewDirectionSet(),
		Results:    NewResultSet(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a copy that shares no mutable state with s.
func (s *Session) Clone() *Session {
	return &Session{
		ID:         s.ID,
		Template:   s.Template,
		Directions: NewDirectionSet(s.Directions.Tags()...),
		Results:    NewResultSet(s.Results.Records()...),
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
