package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"modak-backend/pkg/firestoredb"
)

// A token is active if used within 30 days, expired and purged beyond 90.
const (
	activeTokenWindow  = 30 * 24 * time.Hour
	expiredTokenWindow = 90 * 24 * time.Hour
)

// TokenRepository is the directory of a user's FCM push tokens
type TokenRepository interface {
	// ActiveTokens returns the user's push tokens used within the last 30
	// days. On any read failure it returns the empty set: notification
	// recording and denormalized sync must not be blocked by
	// push-infrastructure issues.
	ActiveTokens(ctx context.Context, userID string) []string

	// DeleteExpired deletes tokens last used more than 90 days ago
	DeleteExpired(ctx context.Context, userID string) (int, error)

	// DeleteAll deletes every token and the token-container document
	DeleteAll(ctx context.Context, userID string) (int, error)
}

type tokenRepository struct {
	client *firestore.Client
}

// NewTokenRepository creates a Firestore-backed TokenRepository
func NewTokenRepository(client *firestore.Client) TokenRepository {
	return &tokenRepository{client: client}
}

func (r *tokenRepository) container(userID string) *firestore.DocumentRef {
	return r.client.Collection("users").Doc(userID).Collection("private").Doc("fcmTokens")
}

func (r *tokenRepository) tokens(userID string) *firestore.CollectionRef {
	return r.container(userID).Collection("tokens")
}

func (r *tokenRepository) ActiveTokens(ctx context.Context, userID string) []string {
	cutoff := time.Now().Add(-activeTokenWindow)
	iter := r.tokens(userID).Where("lastUsed", ">", cutoff).Documents(ctx)
	defer iter.Stop()

	var tokens []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("[Tokens] Failed to query tokens for user %s: %v", userID, err)
			return nil
		}
		if token, err := snap.DataAt("token"); err == nil {
			if s, ok := token.(string); ok && s != "" {
				tokens = append(tokens, s)
			}
		}
	}

	log.Printf("[Tokens] Found %d active tokens for user %s", len(tokens), userID)
	return tokens
}

func (r *tokenRepository) DeleteExpired(ctx context.Context, userID string) (int, error) {
	cutoff := time.Now().Add(-expiredTokenWindow)
	refs, err := collectRefs(r.tokens(userID).Where("lastUsed", "<", cutoff).Select().Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to query expired tokens for user %s: %w", userID, err)
	}
	return firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}

func (r *tokenRepository) DeleteAll(ctx context.Context, userID string) (int, error) {
	refs, err := collectRefs(r.tokens(userID).Select().Documents(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to list tokens for user %s: %w", userID, err)
	}
	refs = append(refs, r.container(userID))
	return firestoredb.DeleteRefs(ctx, r.client, refs, firestoredb.DeleteBatchLimit)
}

// collectRefs drains a document iterator into a slice of refs
func collectRefs(iter *firestore.DocumentIterator) ([]*firestore.DocumentRef, error) {
	defer iter.Stop()
	var refs []*firestore.DocumentRef
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		refs = append(refs, snap.Ref)
	}
	return refs, nil
}
