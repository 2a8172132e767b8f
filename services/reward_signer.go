package services

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"expeditions-service/config"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

var errClaimSignerDisabled = errors.New("reward claim signer is not configured")

// ClaimDomain is the EIP-712 domain the NFT contract verifies vouchers against.
type ClaimDomain struct {
	Name              string `json:"name"`
	Version           string `json:"version"`
	ChainID           int64  `json:"chain_id"`
	VerifyingContract string `json:"verifying_contract"`
}

// ClaimSigner produces a mint voucher for receiver and tokenID.
type ClaimSigner interface {
	Domain() ClaimDomain
	SignClaim(receiver, tokenID string) (string, error)
}

type EIP712ClaimSigner struct {
	key    *ecdsa.PrivateKey
	domain ClaimDomain
}

func NewEIP712ClaimSigner(cfg config.ClaimSigner) (*EIP712ClaimSigner, error) {
	if cfg.PrivateKey == "" {
		return nil, errClaimSignerDisabled
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse claim signer key: %w", err)
	}
	if !common.IsHexAddress(cfg.VerifyingContract) {
		return nil, fmt.Errorf("invalid verifying contract %q", cfg.VerifyingContract)
	}
	return &EIP712ClaimSigner{
		key: key,
		domain: ClaimDomain{
			Name:              cfg.DomainName,
			Version:           cfg.DomainVersion,
			ChainID:           cfg.ChainID,
			VerifyingContract: common.HexToAddress(cfg.VerifyingContract).Hex(),
		},
	}, nil
}

func (s *EIP712ClaimSigner) Domain() ClaimDomain {
	return s.domain
}

// Address is the signer the NFT contract must trust.
func (s *EIP712ClaimSigner) Address() string {
	return crypto.PubkeyToAddress(s.key.PublicKey).Hex()
}

func (s *EIP712ClaimSigner) SignClaim(receiver, tokenID string) (string, error) {
	hash, err := ClaimHash(s.domain, receiver, tokenID)
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return "", fmt.Errorf("sign claim: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// ClaimHash is the EIP-712 digest of Claim(address receiver,uint256 tokenId).
func ClaimHash(domain ClaimDomain, receiver, tokenID string) ([]byte, error) {
	id, ok := new(big.Int).SetString(tokenID, 10)
	if !ok {
		return nil, fmt.Errorf("token id %q is not a decimal integer", tokenID)
	}

	typed := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Claim": {
				{Name: "receiver", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
			},
		},
		PrimaryType: "Claim",
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           math.NewHexOrDecimal256(domain.ChainID),
			VerifyingContract: domain.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"receiver": common.HexToAddress(receiver).Hex(),
			"tokenId":  id.String(),
		},
	}

	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, fmt.Errorf("hash claim: %w", err)
	}
	return hash, nil
}
