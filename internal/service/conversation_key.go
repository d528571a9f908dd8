package service

import (
	"fmt"

	"github.com/cagrik/pazarly/internal/models"
)

// DeriveConversationID builds the canonical id of a conversation between
// two users about one ad. The pair is ordered by ascending user id before
// formatting, so the result is identical no matter which side sends:
//
//	"{user1.id}-{user1.username}-{ad_slug}-{user2.id}-{user2.username}"
//
// Different ads between the same two users produce different ids.
// Callers must reject a == b before deriving.
func DeriveConversationID(a, b *models.User, adSlug string) string {
	first, second := a, b
	if b.ID < a.ID {
		first, second = b, a
	}

	return fmt.Sprintf("%d-%s-%s-%d-%s",
		first.ID, first.Username, adSlug, second.ID, second.Username)
}
