package contentRepo

import (
	"testing"
	"time"

	"creatorhub/models"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func rows(n int) []models.ContentRecord {
	out := make([]models.ContentRecord, n)
	for i := range out {
		out[i] = models.ContentRecord{OID: primitive.NewObjectID(), ID: string(rune('a' + i))}
	}
	return out
}

func TestBuildPageWithLookAhead(t *testing.T) {
	recs := rows(4)

	p := buildPage(recs, 3, "")

	assert.True(t, p.HasMore)
	assert.Len(t, p.Records, 3)
	assert.Equal(t, recs[2].OID.Hex(), p.NextCursor)
}

func TestBuildPageLastPage(t *testing.T) {
	recs := rows(2)

	p := buildPage(recs, 3, "prev")

	assert.False(t, p.HasMore)
	assert.Len(t, p.Records, 2)
	assert.Equal(t, recs[1].OID.Hex(), p.NextCursor)
}

func TestBuildPageEmptyKeepsCursor(t *testing.T) {
	p := buildPage(nil, 3, "prev")

	assert.False(t, p.HasMore)
	assert.Empty(t, p.Records)
	assert.Equal(t, "prev", p.NextCursor)
}

func TestNormalizePageSize(t *testing.T) {
	assert.Equal(t, defaultPageSize, normalizePageSize(0))
	assert.Equal(t, defaultPageSize, normalizePageSize(-4))
	assert.Equal(t, 7, normalizePageSize(7))
	assert.Equal(t, maxPageSize, normalizePageSize(maxPageSize+1))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, time.Second, NextBackoff(500*time.Millisecond, 30*time.Second))
	assert.Equal(t, 30*time.Second, NextBackoff(20*time.Second, 30*time.Second))
	assert.Equal(t, 30*time.Second, NextBackoff(30*time.Second, 30*time.Second))
}

func TestPublishedInsertPipeline(t *testing.T) {
	p := publishedInsertPipeline()

	assert.Len(t, p, 1)
	match := p[0][0]
	assert.Equal(t, "$match", match.Key)
	assert.Equal(t, bson.D{
		{Key: "operationType", Value: "insert"},
		{Key: "fullDocument.status", Value: models.StatusPublished},
	}, match.Value)
}
