package polymarket

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/yanun0323/errors"
)

// Polygon mainnet exchange contract the CLOB verifies order signatures
// against.
const (
	domainName      = "Polymarket CTF Exchange"
	domainVersion   = "1"
	defaultChainID  = 137
	exchangeAddress = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
)

// Order is the EIP-712 order struct signed for the CLOB. All amounts are
// scaled integers (USDC 6 decimals, shares 6 decimals).
type Order struct {
	Salt          *big.Int
	Maker         common.Address
	Signer        common.Address
	Taker         common.Address
	TokenID       *big.Int
	MakerAmount   *big.Int
	TakerAmount   *big.Int
	Expiration    *big.Int
	Nonce         *big.Int
	FeeRateBps    *big.Int
	Side          uint8 // 0 = buy, 1 = sell
	SignatureType uint8 // 0 = EOA
}

// Signer hashes and signs CLOB orders with a private key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID int64
}

// NewSigner parses a hex private key. chainID 0 selects Polygon mainnet.
func NewSigner(hexKey string, chainID int64) (*Signer, error) {
	if chainID == 0 {
		chainID = defaultChainID
	}
	key, err := crypto.HexToECDSA(trimHexPrefix(hexKey))
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: chainID,
	}, nil
}

// Address is the signing wallet address.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignOrder hashes the order per EIP-712 and returns a 65-byte signature
// with the legacy recovery id offset the exchange expects.
func (s *Signer) SignOrder(o *Order) ([]byte, error) {
	digest, err := s.digest(o)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, errors.Wrap(err, "sign order digest")
	}
	sig[64] += 27
	return sig, nil
}

func (s *Signer) digest(o *Order) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Order": {
				{Name: "salt", Type: "uint256"},
				{Name: "maker", Type: "address"},
				{Name: "signer", Type: "address"},
				{Name: "taker", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "makerAmount", Type: "uint256"},
				{Name: "takerAmount", Type: "uint256"},
				{Name: "expiration", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "feeRateBps", Type: "uint256"},
				{Name: "side", Type: "uint8"},
				{Name: "signatureType", Type: "uint8"},
			},
		},
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           math.NewHexOrDecimal256(s.chainID),
			VerifyingContract: exchangeAddress,
		},
		Message: apitypes.TypedDataMessage{
			"salt":          (*math.HexOrDecimal256)(o.Salt),
			"maker":         o.Maker.Hex(),
			"signer":        o.Signer.Hex(),
			"taker":         o.Taker.Hex(),
			"tokenId":       (*math.HexOrDecimal256)(o.TokenID),
			"makerAmount":   (*math.HexOrDecimal256)(o.MakerAmount),
			"takerAmount":   (*math.HexOrDecimal256)(o.TakerAmount),
			"expiration":    (*math.HexOrDecimal256)(o.Expiration),
			"nonce":         (*math.HexOrDecimal256)(o.Nonce),
			"feeRateBps":    (*math.HexOrDecimal256)(o.FeeRateBps),
			"side":          math.NewHexOrDecimal256(int64(o.Side)),
			"signatureType": math.NewHexOrDecimal256(int64(o.SignatureType)),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, errors.Wrap(err, "hash typed data")
	}
	return digest, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
