package subscriptionRepo

import (
	"errors"
	"testing"

	"creatorhub/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestInsertErrorMapsDuplicateKey(t *testing.T) {
	rec := &models.SubscriptionRecord{UserID: "u1", StripeSubscriptionID: "sub_1"}
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}

	err := insertError(rec, dup)
	assert.ErrorIs(t, err, ErrDuplicateSubscription)
	assert.Contains(t, err.Error(), "sub_1")
}

func TestInsertErrorKeepsOtherFailures(t *testing.T) {
	rec := &models.SubscriptionRecord{UserID: "u1", StripeSubscriptionID: "sub_1"}
	cause := errors.New("connection reset")

	err := insertError(rec, cause)
	assert.NotErrorIs(t, err, ErrDuplicateSubscription)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "u1")
}
