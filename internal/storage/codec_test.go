package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSnapshot_DocumentShapes(t *testing.T) {
	snap := NewSnapshot()
	snap.Favorites[42] = []int64{3, 1}
	snap.State.NextAdID = 4

	docs, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	require.Len(t, docs, len(Documents))

	assert.JSONEq(t, `{"42": [3, 1]}`, string(docs[DocFavorites]))
	assert.JSONEq(t, `{"bot_open": true, "next_ad_id": 4, "next_subscription_id": 1}`, string(docs[DocState]))
	assert.JSONEq(t, `{}`, string(docs[DocAds]))
}

func TestEncodeSnapshot_NoHTMLEscaping(t *testing.T) {
	snap := NewSnapshot()
	snap.Ads[1] = Ad{ID: 1, Title: "Q&A <new>"}

	docs, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	assert.Contains(t, string(docs[DocAds]), "Q&A <new>")
}

func TestDecodeSnapshot_PartialFailure(t *testing.T) {
	snap, err := DecodeSnapshot(map[string][]byte{
		DocAds:         []byte(`[1, 2]`),
		DocFavorites:   []byte(`{"5": [1, 2]}`),
		DocPriceOffers: []byte(`oops`),
		DocState:       []byte(`   `),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), DocAds)
	assert.Contains(t, err.Error(), DocPriceOffers)

	require.NotNil(t, snap)
	assert.Empty(t, snap.Ads)
	assert.Equal(t, []int64{1, 2}, snap.Favorites[5])
	assert.Equal(t, State{BotOpen: true, NextAdID: 1, NextSubscriptionID: 1}, snap.State)
}

func TestDecodeSnapshot_PartialState(t *testing.T) {
	snap, err := DecodeSnapshot(map[string][]byte{
		DocState: []byte(`{"bot_open": false}`),
	})
	require.NoError(t, err)
	assert.Equal(t, State{BotOpen: false, NextAdID: 1, NextSubscriptionID: 1}, snap.State)
}
