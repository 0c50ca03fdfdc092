package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Requiere un servidor real; se omite si MONGO_URI no está definida
func TestMongoPersister_RoundTrip(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := ConnectMongo(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database(fmt.Sprintf("ecobazaarx_test_%d", time.Now().UnixNano()))
	defer db.Drop(ctx)

	p := NewMongoPersister(db, nil)

	snap, err := p.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, snap)

	assertRoundTrip(t, p)
}

func TestConnectMongo_EmptyURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), "")
	require.Error(t, err)
}
