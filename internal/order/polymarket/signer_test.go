package polymarket

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0000000000000000000000000000000000000000000000000000000000000001"

func TestNewSignerDerivesAddress(t *testing.T) {
	s, err := NewSigner(testKey, 0)
	require.NoError(t, err)

	// well-known address for private key 1
	assert.Equal(t, common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"), s.Address())
	assert.Equal(t, int64(defaultChainID), s.chainID)
}

func TestNewSignerAcceptsHexPrefix(t *testing.T) {
	a, err := NewSigner(testKey, 0)
	require.NoError(t, err)
	b, err := NewSigner("0x"+testKey, 80002)
	require.NoError(t, err)

	assert.Equal(t, a.Address(), b.Address())
	assert.Equal(t, int64(80002), b.chainID)
}

func TestNewSignerRejectsBadKey(t *testing.T) {
	_, err := NewSigner("not-hex", 0)
	assert.Error(t, err)

	_, err = NewSigner("", 0)
	assert.Error(t, err)
}

func testOrder(s *Signer) *Order {
	return &Order{
		Salt:        big.NewInt(12345),
		Maker:       s.Address(),
		Signer:      s.Address(),
		TokenID:     big.NewInt(777),
		MakerAmount: big.NewInt(5_000_000),
		TakerAmount: big.NewInt(10_000_000),
		Expiration:  big.NewInt(0),
		Nonce:       big.NewInt(0),
		FeeRateBps:  big.NewInt(0),
	}
}

func TestSignOrderRecoverable(t *testing.T) {
	s, err := NewSigner(testKey, 0)
	require.NoError(t, err)

	sig, err := s.SignOrder(testOrder(s))
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	// the signature must recover to the signing wallet
	raw := make([]byte, 65)
	copy(raw, sig)
	raw[64] -= 27

	digest, err := s.digest(testOrder(s))
	require.NoError(t, err)
	pub, err := crypto.SigToPub(digest, raw)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), crypto.PubkeyToAddress(*pub))
}

func TestSignOrderDeterministic(t *testing.T) {
	s, err := NewSigner(testKey, 0)
	require.NoError(t, err)

	a, err := s.SignOrder(testOrder(s))
	require.NoError(t, err)
	b, err := s.SignOrder(testOrder(s))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// a different side yields a different digest
	sell := testOrder(s)
	sell.Side = 1
	c, err := s.SignOrder(sell)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSignatureDependsOnChainID(t *testing.T) {
	mainnet, err := NewSigner(testKey, 137)
	require.NoError(t, err)
	testnet, err := NewSigner(testKey, 80002)
	require.NoError(t, err)

	a, err := mainnet.SignOrder(testOrder(mainnet))
	require.NoError(t, err)
	b, err := testnet.SignOrder(testOrder(testnet))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTrimHexPrefix(t *testing.T) {
	assert.Equal(t, "ab", trimHexPrefix("0xab"))
	assert.Equal(t, "ab", trimHexPrefix("0Xab"))
	assert.Equal(t, "ab", trimHexPrefix("ab"))
	assert.Equal(t, "", trimHexPrefix("0x"))
}
