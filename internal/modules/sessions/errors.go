package sessions

import "filesmanager/internal/domain"

var ErrSessionNotFound = domain.NewError(domain.ErrNotFound, "session not found")
