// Package participant holds the registry of known data-space participants
// and their service endpoints.
package participant

// Participant describes one registered data-space participant. Immutable
// once registered.
type Participant struct {
	// ID is the globally unique participant identifier.
	ID string `yaml:"id" validate:"required"`
	// Address is the participant's network address.
	Address string `yaml:"address" validate:"required"`
	// Pod is the participant's storage pod name. Expected unique; lookup
	// by pod returns the first match in registration order.
	Pod string `yaml:"pod" validate:"required"`
	// BlockchainAddress identifies the participant on the ledger backing
	// the sharing platform. Checksummed 0x form.
	BlockchainAddress string `yaml:"blockchain_address" validate:"required"`
	// ReferenceImage is the fuzzy-extractor reference image filename used
	// by the encryption service to derive this participant's key.
	ReferenceImage string `yaml:"reference_image" validate:"required"`
	// CMSEndpoint is the participant's case-management system base URL.
	CMSEndpoint string `yaml:"cms_endpoint" validate:"omitempty,url"`
	// StorageEndpoint is the participant's pod-storage base URL.
	StorageEndpoint string `yaml:"storage_endpoint" validate:"required,url"`
	// PlatformEndpoint is the participant's data-sharing-platform base URL.
	PlatformEndpoint string `yaml:"platform_endpoint" validate:"required,url"`
}
