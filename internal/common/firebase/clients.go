// internal/common/firebase/clients.go
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"campus-notifier/internal/common/config"
)

// Clients is the process-wide Firebase handle. It is created once at start
// and passed into every handler constructor.
type Clients struct {
	App       *firebase.App
	Firestore *firestore.Client
	Messaging *messaging.Client
	// Bucket is nil when no storage bucket is configured.
	Bucket *gcs.BucketHandle
}

func NewClients(ctx context.Context, cfg config.FirebaseConfig) (*Clients, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	fs, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firestore: %w", err)
	}

	fcm, err := app.Messaging(ctx)
	if err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("initialize messaging: %w", err)
	}

	clients := &Clients{App: app, Firestore: fs, Messaging: fcm}

	if cfg.StorageBucket != "" {
		st, err := app.Storage(ctx)
		if err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("initialize storage: %w", err)
		}
		if clients.Bucket, err = st.Bucket(cfg.StorageBucket); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("open bucket %s: %w", cfg.StorageBucket, err)
		}
	}

	return clients, nil
}

func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}
