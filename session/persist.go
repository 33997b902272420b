package session

// Filter reduces a live session to its persisted subset. The output field
// set is a strict function of (fields present on s) × (flags): User and
// CreatedAt always carry over, each token only when its flag is on AND the
// source value is non-empty, and ExpiresAt only when at least one token
// flag is on AND the source has an expiry.
//
// Filter is total: it never fails and never invents a field.
func Filter(s *Session, flags StoreFlags) *Persisted {
	if s == nil {
		return &Persisted{}
	}

	p := &Persisted{
		User:      s.User,
		CreatedAt: s.CreatedAt,
	}

	if flags.IDToken && s.IDToken != "" {
		p.IDToken = s.IDToken
	}
	if flags.AccessToken && s.AccessToken != "" {
		p.AccessToken = s.AccessToken
	}
	if flags.RefreshToken && s.RefreshToken != "" {
		p.RefreshToken = s.RefreshToken
	}

	if flags.Any() && s.ExpiresAt != 0 {
		p.ExpiresAt = s.ExpiresAt
	}

	return p
}
