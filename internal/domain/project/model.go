package project

// Project is a writing project whose words count toward a sprint. Projects
// are managed elsewhere; this service only checks ownership.
type Project struct {
	ID          string
	OwnerUserID string
	Title       string
}

func (p Project) IsOwnedBy(userID string) bool {
	return userID != "" && p.OwnerUserID == userID
}
