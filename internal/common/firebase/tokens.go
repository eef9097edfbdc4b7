package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campus-notifier/internal/models"
)

// TokenStore reads and prunes user_tokens/{userId} documents.
type TokenStore struct {
	client *firestore.Client
}

func NewTokenStore(client *firestore.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Get returns the user's token, or nil when the document does not exist.
func (s *TokenStore) Get(ctx context.Context, userID string) (*models.DeviceToken, error) {
	snap, err := s.client.Collection(models.CollectionUserTokens).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get token %s: %w", userID, err)
	}

	var token models.DeviceToken
	if err := snap.DataTo(&token); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", userID, err)
	}
	token.UserID = snap.Ref.ID
	return &token, nil
}

// List returns every stored token with a non-empty fcmToken.
func (s *TokenStore) List(ctx context.Context) ([]models.DeviceToken, error) {
	iter := s.client.Collection(models.CollectionUserTokens).Documents(ctx)
	defer iter.Stop()

	var tokens []models.DeviceToken
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list tokens: %w", err)
		}

		var token models.DeviceToken
		if err := snap.DataTo(&token); err != nil || token.Token == "" {
			continue
		}
		token.UserID = snap.Ref.ID
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (s *TokenStore) Delete(ctx context.Context, userID string) error {
	if _, err := s.client.Collection(models.CollectionUserTokens).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("delete token %s: %w", userID, err)
	}
	return nil
}
