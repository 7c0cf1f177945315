package config

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	types "github.com/prysmaticlabs/eth2-types"
)

const (
	BLS_PUBKEY_LENGTH    = 48
	BLS_SIGNATURE_LENGTH = 96
	FAR_FUTURE_EPOCH     = types.Epoch(1<<64 - 1)
	GENESIS_SLOT         = types.Slot(0)
)

// RotationPolicy decides when a stored next sync committee becomes the
// current one.
type RotationPolicy string

const (
	// RotateOnFinalizedPeriod rotates once the finalized header enters the
	// period of the next committee.
	RotateOnFinalizedPeriod RotationPolicy = "finalized"
	// RotateOnSignaturePeriod rotates as soon as an update signed in the
	// next period is accepted.
	RotateOnSignaturePeriod RotationPolicy = "signature"
)

// Version is a 4 byte fork version or domain type.
type Version [4]byte

func (v Version) String() string {
	return "0x" + hex.EncodeToString(v[:])
}

// MarshalYAML writes the version as a 0x prefixed hex string.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML reads a 0x prefixed hex string.
func (v *Version) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return errors.Wrapf(err, "invalid version %q", s)
	}
	if len(raw) != len(v) {
		return fmt.Errorf("invalid version length %d for %q", len(raw), s)
	}
	copy(v[:], raw)
	return nil
}

// Config holds the network profile the light client verifies against.
type Config struct {
	PresetBase string `yaml:"PRESET_BASE"`
	ConfigName string `yaml:"CONFIG_NAME"`

	SlotsPerEpoch                uint64 `yaml:"SLOTS_PER_EPOCH"`
	EpochsPerSyncCommitteePeriod uint64 `yaml:"EPOCHS_PER_SYNC_COMMITTEE_PERIOD"`
	SyncCommitteeSize            uint64 `yaml:"SYNC_COMMITTEE_SIZE"`
	SecondsPerSlot               uint64 `yaml:"SECONDS_PER_SLOT"`

	GenesisForkVersion   Version     `yaml:"GENESIS_FORK_VERSION"`
	AltairForkVersion    Version     `yaml:"ALTAIR_FORK_VERSION"`
	AltairForkEpoch      types.Epoch `yaml:"ALTAIR_FORK_EPOCH"`
	BellatrixForkVersion Version     `yaml:"BELLATRIX_FORK_VERSION"`
	BellatrixForkEpoch   types.Epoch `yaml:"BELLATRIX_FORK_EPOCH"`
	CapellaForkVersion   Version     `yaml:"CAPELLA_FORK_VERSION"`
	CapellaForkEpoch     types.Epoch `yaml:"CAPELLA_FORK_EPOCH"`
	DenebForkVersion     Version     `yaml:"DENEB_FORK_VERSION"`
	DenebForkEpoch       types.Epoch `yaml:"DENEB_FORK_EPOCH"`

	DomainSyncCommittee Version `yaml:"DOMAIN_SYNC_COMMITTEE"`

	// Generalized indices into the beacon state and block body trees.
	FinalizedRootIndex        uint64 `yaml:"FINALIZED_ROOT_INDEX"`
	CurrentSyncCommitteeIndex uint64 `yaml:"CURRENT_SYNC_COMMITTEE_INDEX"`
	NextSyncCommitteeIndex    uint64 `yaml:"NEXT_SYNC_COMMITTEE_INDEX"`
	ExecutionPayloadIndex     uint64 `yaml:"EXECUTION_PAYLOAD_INDEX"`

	// Zero disables the weak subjectivity check.
	WeakSubjectivityPeriodSeconds uint64 `yaml:"WEAK_SUBJECTIVITY_PERIOD_SECONDS"`

	FinalizedHeaderHistory uint64         `yaml:"FINALIZED_HEADER_HISTORY"`
	ExecutionHeaderHistory uint64         `yaml:"EXECUTION_HEADER_HISTORY"`
	RotationPolicy         RotationPolicy `yaml:"ROTATION_POLICY"`
}

var mainnetConfig = &Config{
	PresetBase: "mainnet",
	ConfigName: "mainnet",

	SlotsPerEpoch:                32,
	EpochsPerSyncCommitteePeriod: 256,
	SyncCommitteeSize:            512,
	SecondsPerSlot:               12,

	GenesisForkVersion:   Version{0x00, 0x00, 0x00, 0x00},
	AltairForkVersion:    Version{0x01, 0x00, 0x00, 0x00},
	AltairForkEpoch:      74240,
	BellatrixForkVersion: Version{0x02, 0x00, 0x00, 0x00},
	BellatrixForkEpoch:   144896,
	CapellaForkVersion:   Version{0x03, 0x00, 0x00, 0x00},
	CapellaForkEpoch:     194048,
	DenebForkVersion:     Version{0x04, 0x00, 0x00, 0x00},
	DenebForkEpoch:       269568,

	DomainSyncCommittee: Version{0x07, 0x00, 0x00, 0x00},

	FinalizedRootIndex:        105,
	CurrentSyncCommitteeIndex: 54,
	NextSyncCommitteeIndex:    55,
	ExecutionPayloadIndex:     25,

	WeakSubjectivityPeriodSeconds: 0,

	FinalizedHeaderHistory: 8192,
	ExecutionHeaderHistory: 8192,
	RotationPolicy:         RotateOnFinalizedPeriod,
}

var minimalConfig = &Config{
	PresetBase: "minimal",
	ConfigName: "minimal",

	SlotsPerEpoch:                8,
	EpochsPerSyncCommitteePeriod: 8,
	SyncCommitteeSize:            32,
	SecondsPerSlot:               6,

	GenesisForkVersion:   Version{0x00, 0x00, 0x00, 0x01},
	AltairForkVersion:    Version{0x01, 0x00, 0x00, 0x01},
	AltairForkEpoch:      0,
	BellatrixForkVersion: Version{0x02, 0x00, 0x00, 0x01},
	BellatrixForkEpoch:   0,
	CapellaForkVersion:   Version{0x03, 0x00, 0x00, 0x01},
	CapellaForkEpoch:     0,
	DenebForkVersion:     Version{0x04, 0x00, 0x00, 0x01},
	DenebForkEpoch:       FAR_FUTURE_EPOCH,

	DomainSyncCommittee: Version{0x07, 0x00, 0x00, 0x00},

	FinalizedRootIndex:        105,
	CurrentSyncCommitteeIndex: 54,
	NextSyncCommitteeIndex:    55,
	ExecutionPayloadIndex:     25,

	WeakSubjectivityPeriodSeconds: 0,

	FinalizedHeaderHistory: 64,
	ExecutionHeaderHistory: 64,
	RotationPolicy:         RotateOnFinalizedPeriod,
}

// Mainnet returns a copy of the mainnet profile.
func Mainnet() *Config {
	return mainnetConfig.Copy()
}

// Minimal returns a copy of the minimal profile.
func Minimal() *Config {
	return minimalConfig.Copy()
}

// ByName returns the preset profile with the given name.
func ByName(name string) (*Config, error) {
	switch strings.ToLower(name) {
	case "mainnet", "":
		return Mainnet(), nil
	case "minimal":
		return Minimal(), nil
	default:
		return nil, fmt.Errorf("unknown network preset %q", name)
	}
}

// Copy returns a deep copy of the config.
func (c *Config) Copy() *Config {
	cp := *c
	return &cp
}

// Validate checks the profile for values the verifier cannot work with.
func (c *Config) Validate() error {
	if c.SlotsPerEpoch == 0 || c.EpochsPerSyncCommitteePeriod == 0 {
		return errors.New("slots per epoch and epochs per sync committee period must be non-zero")
	}
	switch c.SyncCommitteeSize {
	case 32, 64, 128, 512:
	default:
		return fmt.Errorf("unsupported sync committee size %d", c.SyncCommitteeSize)
	}
	for name, gindex := range map[string]uint64{
		"FINALIZED_ROOT_INDEX":         c.FinalizedRootIndex,
		"CURRENT_SYNC_COMMITTEE_INDEX": c.CurrentSyncCommitteeIndex,
		"NEXT_SYNC_COMMITTEE_INDEX":    c.NextSyncCommitteeIndex,
		"EXECUTION_PAYLOAD_INDEX":      c.ExecutionPayloadIndex,
	} {
		if gindex < 2 {
			return fmt.Errorf("invalid generalized index %s=%d", name, gindex)
		}
	}
	if c.FinalizedHeaderHistory == 0 || c.ExecutionHeaderHistory == 0 {
		return errors.New("header history capacities must be non-zero")
	}
	switch c.RotationPolicy {
	case RotateOnFinalizedPeriod, RotateOnSignaturePeriod:
	default:
		return fmt.Errorf("unknown rotation policy %q", c.RotationPolicy)
	}
	return nil
}

// SyncCommitteeBitsSize is the byte length of a packed participation field.
func (c *Config) SyncCommitteeBitsSize() uint64 {
	return c.SyncCommitteeSize / 8
}

// SlotsPerSyncCommitteePeriod returns the number of slots a committee serves.
func (c *Config) SlotsPerSyncCommitteePeriod() uint64 {
	return c.SlotsPerEpoch * c.EpochsPerSyncCommitteePeriod
}

// EpochAtSlot returns the epoch containing slot.
func (c *Config) EpochAtSlot(slot types.Slot) types.Epoch {
	return types.Epoch(uint64(slot) / c.SlotsPerEpoch)
}

// SyncPeriodAtSlot returns the sync committee period containing slot.
func (c *Config) SyncPeriodAtSlot(slot types.Slot) uint64 {
	return uint64(slot) / c.SlotsPerSyncCommitteePeriod()
}

// ForkVersionAtEpoch returns the fork version active at epoch.
func (c *Config) ForkVersionAtEpoch(epoch types.Epoch) Version {
	switch {
	case epoch >= c.DenebForkEpoch:
		return c.DenebForkVersion
	case epoch >= c.CapellaForkEpoch:
		return c.CapellaForkVersion
	case epoch >= c.BellatrixForkEpoch:
		return c.BellatrixForkVersion
	case epoch >= c.AltairForkEpoch:
		return c.AltairForkVersion
	default:
		return c.GenesisForkVersion
	}
}
