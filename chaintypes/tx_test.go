package chaintypes

import (
	"crypto/ed25519"
	"testing"

	"github.com/dmrl789/ippan-core/hashtimer"
	"github.com/stretchr/testify/require"
)

func sampleTx() Transaction {
	return Transaction{
		From:      ID{1},
		To:        ID{2},
		Amount:    5_000_000,
		Nonce:     1,
		HashTimer: hashtimer.Derive(hashtimer.ContextTx, 1_000_000, []byte("domain"), []byte("payload"), []byte("nonce"), []byte("node")),
	}
}

func TestComputeTxIDIsDeterministic(t *testing.T) {
	require := require.New(t)

	tx := sampleTx()
	id1, err := ComputeTxID(tx)
	require.NoError(err)
	id2, err := ComputeTxID(tx)
	require.NoError(err)
	require.Equal(id1, id2)
}

func TestComputeTxIDChangesWithAmount(t *testing.T) {
	require := require.New(t)

	tx1 := sampleTx()
	tx2 := sampleTx()
	tx2.Amount = 6_000_000

	id1, err := ComputeTxID(tx1)
	require.NoError(err)
	id2, err := ComputeTxID(tx2)
	require.NoError(err)
	require.NotEqual(id1, id2)
}

func TestVerifyIDRoundTrip(t *testing.T) {
	require := require.New(t)

	tx := sampleTx()
	id, err := ComputeTxID(tx)
	require.NoError(err)
	tx.ID = id

	ok, err := VerifyID(tx)
	require.NoError(err)
	require.True(ok)
}

func TestVerifyIDRejectsTamperedID(t *testing.T) {
	require := require.New(t)

	tx := sampleTx()
	tx.ID = ID{0xff}

	ok, err := VerifyID(tx)
	require.NoError(err)
	require.False(ok)
}

func TestVerifySignatureRoundTrip(t *testing.T) {
	require := require.New(t)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(err)

	tx := sampleTx()
	id, err := ComputeTxID(tx)
	require.NoError(err)
	tx.ID = id
	sig := ed25519.Sign(priv, tx.ID[:])
	copy(tx.Signature[:], sig)

	require.True(VerifySignature(tx, pub))
}

func TestVerifySignatureRejectsWrongKey(t *testing.T) {
	require := require.New(t)

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(err)
	otherPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(err)

	tx := sampleTx()
	id, err := ComputeTxID(tx)
	require.NoError(err)
	tx.ID = id
	sig := ed25519.Sign(priv, tx.ID[:])
	copy(tx.Signature[:], sig)

	require.False(VerifySignature(tx, otherPub))
}
