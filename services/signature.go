package services

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddCampaignMessage is what an initiator signs to schedule a campaign.
const AddCampaignMessage = "Add Campaign"

// SignatureVerifier recovers the signing address of a personal_sign message.
type SignatureVerifier interface {
	Verify(message, signature string) (string, error)
}

// PersonalSignVerifier recovers EIP-191 signatures as produced by wallets'
// personal_sign.
type PersonalSignVerifier struct{}

func (PersonalSignVerifier) Verify(message, signature string) (string, error) {
	raw, err := hexutil.Decode(signature)
	if err != nil || len(raw) != crypto.SignatureLength {
		return "", ErrInvalidSignature
	}

	sig := make([]byte, len(raw))
	copy(sig, raw)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", ErrInvalidSignature
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
}

// VerifySigner checks that signature over message was produced by address.
func VerifySigner(v SignatureVerifier, address, message, signature string) error {
	recovered, err := v.Verify(message, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !strings.EqualFold(recovered, address) {
		return ErrInvalidSignature
	}
	return nil
}

// NormalizeAddress validates a hex address and returns it lowercased.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}
