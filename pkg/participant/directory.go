package participant

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

var (
	ErrDuplicateID       = errors.New("participant id already registered")
	ErrInvalidBlockchain = errors.New("invalid blockchain address")
)

// Directory is an append-only registry of participants. It is populated
// once at startup and read-only thereafter, so lookups need no locking.
type Directory struct {
	ordered []*Participant
	byID    map[string]*Participant

	validate *validator.Validate
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byID:     make(map[string]*Participant),
		validate: validator.New(),
	}
}

// Register adds a participant to the directory. Registration order is
// preserved for pod lookups. There is no removal or update; participant
// identity is fixed per deployment.
func (d *Directory) Register(p Participant) error {
	if err := d.validate.Struct(p); err != nil {
		return fmt.Errorf("invalid participant %q: %w", p.ID, err)
	}
	if !common.IsHexAddress(p.BlockchainAddress) {
		return fmt.Errorf("%w: participant %q: %q", ErrInvalidBlockchain, p.ID, p.BlockchainAddress)
	}
	if _, ok := d.byID[p.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
	}

	p.BlockchainAddress = common.HexToAddress(p.BlockchainAddress).Hex()

	stored := p
	d.ordered = append(d.ordered, &stored)
	d.byID[p.ID] = &stored
	return nil
}

// ByID returns the participant with the given id.
func (d *Directory) ByID(id string) (Participant, bool) {
	p, ok := d.byID[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// ByPod returns the first registered participant whose pod matches.
// Under duplicate pod registration the first registration wins,
// deterministically.
func (d *Directory) ByPod(pod string) (Participant, bool) {
	for _, p := range d.ordered {
		if p.Pod == pod {
			return *p, true
		}
	}
	return Participant{}, false
}

// All returns every registered participant in registration order.
func (d *Directory) All() []Participant {
	out := make([]Participant, len(d.ordered))
	for i, p := range d.ordered {
		out[i] = *p
	}
	return out
}

// Field projections. Each returns the zero value and false rather than
// failing when the id is unknown.

// AddressOf returns the network address of the participant.
func (d *Directory) AddressOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.Address, true
}

// PodOf returns the pod name of the participant.
func (d *Directory) PodOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.Pod, true
}

// BlockchainAddressOf returns the ledger address of the participant.
func (d *Directory) BlockchainAddressOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.BlockchainAddress, true
}

// ReferenceImageOf returns the fuzzy-extractor reference image filename.
func (d *Directory) ReferenceImageOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.ReferenceImage, true
}

// CMSEndpointOf returns the case-management endpoint of the participant.
func (d *Directory) CMSEndpointOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.CMSEndpoint, true
}

// StorageEndpointOf returns the pod-storage endpoint of the participant.
func (d *Directory) StorageEndpointOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.StorageEndpoint, true
}

// PlatformEndpointOf returns the sharing-platform endpoint of the participant.
func (d *Directory) PlatformEndpointOf(id string) (string, bool) {
	p, ok := d.byID[id]
	if !ok {
		return "", false
	}
	return p.PlatformEndpoint, true
}
