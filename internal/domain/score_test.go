package domain

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreJSON(t *testing.T) {
	var r ReviewRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r1","score":"4"}`), &r))
	assert.Equal(t, Score(4), r.Score)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"r1","score":3.5}`), &r))
	assert.Equal(t, Score(3.5), r.Score)

	assert.Error(t, json.Unmarshal([]byte(`{"score":"five"}`), &r))

	for _, raw := range []string{`"NaN"`, `"Inf"`, `"+Inf"`, `"-Infinity"`, `1e400`} {
		assert.Error(t, json.Unmarshal([]byte(`{"score":`+raw+`}`), &r), raw)
	}

	out, err := json.Marshal(ReviewRecord{ID: "r1", Score: 5})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"score":5`)
}

func TestScoreAttributeValue(t *testing.T) {
	t.Run("reads legacy string attribute", func(t *testing.T) {
		item := map[string]types.AttributeValue{
			"id":    &types.AttributeValueMemberS{Value: "r1"},
			"score": &types.AttributeValueMemberS{Value: "2"},
		}
		var r ReviewRecord
		require.NoError(t, attributevalue.UnmarshalMap(item, &r))
		assert.Equal(t, Score(2), r.Score)
	})

	t.Run("rejects non-finite attribute", func(t *testing.T) {
		var s Score
		assert.Error(t, s.UnmarshalDynamoDBAttributeValue(&types.AttributeValueMemberS{Value: "NaN"}))
	})

	t.Run("writes number attribute", func(t *testing.T) {
		item, err := attributevalue.MarshalMap(ReviewRecord{ID: "r1", Score: 4})
		require.NoError(t, err)
		n, ok := item["score"].(*types.AttributeValueMemberN)
		require.True(t, ok)
		assert.Equal(t, "4", n.Value)
	})
}

func TestUserRecordClone(t *testing.T) {
	orig := &UserRecord{
		UserID: "u1",
		Apps: []AppRecord{{
			ID: "a1",
			Reviews: []ReviewRecord{{
				ID:         "r1",
				Features:   []string{"login"},
				Sentiments: []SentimentEntry{{Sentence: "s", Sentiment: "joy"}},
			}},
		}},
	}

	c := orig.Clone()
	c.Apps[0].Reviews[0].Features[0] = "changed"
	c.Apps[0].Reviews[0].Sentiments[0].Sentiment = "anger"
	c.Apps[0].AppName = "other"

	assert.Equal(t, "login", orig.Apps[0].Reviews[0].Features[0])
	assert.Equal(t, "joy", orig.Apps[0].Reviews[0].Sentiments[0].Sentiment)
	assert.Equal(t, "", orig.Apps[0].AppName)
}
