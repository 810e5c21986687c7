package urtypes

import (
	"errors"
	"fmt"
)

var (
	// ErrGrammar is the category of every malformed path text error.
	ErrGrammar = errors.New("malformed derivation path")
	// ErrRange is the category of every numeric bound violation.
	ErrRange = errors.New("value out of range")
	// ErrConsistency is the category of cross-field violations of key
	// records, extended keys and their paths.
	ErrConsistency = errors.New("inconsistent key data")
	// ErrDecode is the category of every unusable wire encoding.
	ErrDecode = errors.New("malformed wire data")

	// ErrEmptyPathSegment ...
	ErrEmptyPathSegment = fmt.Errorf("%w: empty path segment", ErrGrammar)
	// ErrInvalidHardenedMarker ...
	ErrInvalidHardenedMarker = fmt.Errorf("%w: invalid hardened marker", ErrGrammar)
	// ErrInvalidChildIndex ...
	ErrInvalidChildIndex = fmt.Errorf("%w: child index must be a decimal number", ErrGrammar)
	// ErrInvalidRangeSyntax ...
	ErrInvalidRangeSyntax = fmt.Errorf("%w: range must be in the form \"low-high\"", ErrGrammar)
	// ErrInvalidPairSyntax ...
	ErrInvalidPairSyntax = fmt.Errorf("%w: pair must be in the form \"<external;internal>\"", ErrGrammar)

	// ErrChildIndexOutOfRange ...
	ErrChildIndexOutOfRange = fmt.Errorf(
		"%w: child index must be lower than %d", ErrRange, HardenedKeyStart,
	)
	// ErrInvalidRangeBounds ...
	ErrInvalidRangeBounds = fmt.Errorf("%w: range low bound must be lower than high bound", ErrRange)
	// ErrNullSourceFingerprint ...
	ErrNullSourceFingerprint = fmt.Errorf("%w: source fingerprint must not be zero", ErrRange)
	// ErrPathTooDeep ...
	ErrPathTooDeep = fmt.Errorf("%w: derivation path must not exceed %d components", ErrRange, maxPathDepth)
	// ErrCoinTypeOutOfRange ...
	ErrCoinTypeOutOfRange = fmt.Errorf(
		"%w: coin type must be lower than %d", ErrRange, HardenedKeyStart,
	)
	// ErrUnknownNetwork ...
	ErrUnknownNetwork = fmt.Errorf("%w: network must be either mainnet (0) or testnet (1)", ErrRange)

	// ErrMissingSourceFingerprint ...
	ErrMissingSourceFingerprint = fmt.Errorf(
		"%w: empty derivation path requires a source fingerprint", ErrConsistency,
	)
	// ErrInvalidKeyDataLength ...
	ErrInvalidKeyDataLength = fmt.Errorf("%w: key data must be %d bytes", ErrConsistency, KeyDataLen)
	// ErrInvalidChainCodeLength ...
	ErrInvalidChainCodeLength = fmt.Errorf("%w: chain code must be %d bytes", ErrConsistency, ChainCodeLen)
	// ErrMissingChainCode ...
	ErrMissingChainCode = fmt.Errorf("%w: chain code is required", ErrConsistency)
	// ErrMasterParentFingerprint ...
	ErrMasterParentFingerprint = fmt.Errorf(
		"%w: master key must not carry a parent fingerprint", ErrConsistency,
	)
	// ErrMasterExtraFields ...
	ErrMasterExtraFields = fmt.Errorf(
		"%w: master key must not carry use info, origin, children, name or note", ErrConsistency,
	)
	// ErrMasterPublic ...
	ErrMasterPublic = fmt.Errorf("%w: master key is always private", ErrConsistency)
	// ErrParentFingerprintMismatch ...
	ErrParentFingerprintMismatch = fmt.Errorf(
		"%w: parent fingerprint must match the source fingerprint of a single component origin",
		ErrConsistency,
	)
	// ErrCoinTypeMismatch ...
	ErrCoinTypeMismatch = fmt.Errorf(
		"%w: origin coin type component must match use info coin type", ErrConsistency,
	)
	// ErrHardenedPublicChildren ...
	ErrHardenedPublicChildren = fmt.Errorf(
		"%w: hardened children derivation requires a private key", ErrConsistency,
	)
	// ErrNetworkMismatch ...
	ErrNetworkMismatch = fmt.Errorf(
		"%w: extended key network must match use info network", ErrConsistency,
	)
	// ErrChecksumMismatch ...
	ErrChecksumMismatch = fmt.Errorf("%w: extended key checksum mismatch", ErrConsistency)
	// ErrPathMismatch ...
	ErrPathMismatch = fmt.Errorf("%w: extended key does not match derivation path", ErrConsistency)
	// ErrInvalidMasterKey ...
	ErrInvalidMasterKey = fmt.Errorf(
		"%w: extended key of depth 0 must have null parent fingerprint and child number",
		ErrConsistency,
	)

	// ErrUnclassifiableComponent ...
	ErrUnclassifiableComponent = fmt.Errorf("%w: unclassifiable path component", ErrDecode)
	// ErrMissingComponents ...
	ErrMissingComponents = fmt.Errorf("%w: keypath components are missing", ErrDecode)
	// ErrMissingKeyData ...
	ErrMissingKeyData = fmt.Errorf("%w: hdkey key data is missing", ErrDecode)
	// ErrUnexpectedTag ...
	ErrUnexpectedTag = fmt.Errorf("%w: unexpected tag", ErrDecode)
	// ErrInvalidExtendedKeyLength ...
	ErrInvalidExtendedKeyLength = fmt.Errorf(
		"%w: extended key must be %d bytes once base58 decoded", ErrDecode, serializedKeyLen+checksumLen,
	)
	// ErrUnknownKeyVersion ...
	ErrUnknownKeyVersion = fmt.Errorf("%w: unknown extended key version", ErrDecode)
	// ErrInvalidKeyPrefix ...
	ErrInvalidKeyPrefix = fmt.Errorf("%w: key data prefix does not match key version", ErrDecode)
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = fmt.Errorf("%w: public key is not a valid secp256k1 point", ErrDecode)
)

func decodeError(err error) error {
	return fmt.Errorf("%w: %v", ErrDecode, err)
}
