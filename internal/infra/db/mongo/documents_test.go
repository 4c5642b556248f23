package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/referral"
)

func TestSettingsUpdateSetsOnlyGivenFields(t *testing.T) {
	update := settingsUpdate(catalog.SiteSettings{PaymentDestination: "2200 0000 0000 0000"})
	assert.Equal(t, bson.M{"$set": bson.M{"payment_destination": "2200 0000 0000 0000"}}, update)
}

func TestReferrerDocumentCopiesWorker(t *testing.T) {
	at := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	r, err := referral.NewRegistration("w1", referral.Client{TelegramID: 42, Username: "ivan"}, at)
	require.NoError(t, err)

	doc := newReferrerDocument(workerDocument{TelegramID: 900, Username: "max_w", ReferralCode: "w1"}, r)
	assert.Equal(t, int64(42), doc.ClientID)
	assert.Equal(t, "ivan", doc.ClientUsername)
	assert.Equal(t, "max_w", doc.Name)
	assert.Equal(t, int64(900), doc.TelegramID)
	assert.Equal(t, at, doc.CreatedAt)

	assert.Equal(t, "Max", workerDocument{FirstName: "Max", Username: "max_w"}.displayName())
}
