package impact

import "time"

// SetNow pins the clock used for the monthly series.
func (s *Service) SetNow(now func() time.Time) { s.now = now }
