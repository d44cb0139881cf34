package models

import (
	"fmt"
	"strings"
)

// DeviceKind identifies the virtual hardware devices that can be backed by a datastore.
type DeviceKind string

const (
	DeviceKindDisk   DeviceKind = "disk"
	DeviceKindCdrom  DeviceKind = "cdrom"
	DeviceKindFloppy DeviceKind = "floppy"
	DeviceKindOther  DeviceKind = "other"
)

// DefaultDeviceKinds are scanned when no kinds are configured.
var DefaultDeviceKinds = []DeviceKind{DeviceKindDisk, DeviceKindCdrom}

// ParseDeviceKind converts a configuration value into a DeviceKind.
func ParseDeviceKind(s string) (DeviceKind, error) {
	switch k := DeviceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case DeviceKindDisk, DeviceKindCdrom, DeviceKindFloppy:
		return k, nil
	default:
		return "", fmt.Errorf("unknown device kind %q", s)
	}
}

// BackingKind tells what implements a virtual device: a file on a datastore
// (vmdk, iso, flp) or host pass-through hardware.
type BackingKind string

const (
	BackingFile    BackingKind = "file"
	BackingDevice  BackingKind = "device"
	BackingUnknown BackingKind = "unknown"
)

// Backing describes the resource behind a device. Only file backings carry
// a datastore reference.
type Backing struct {
	Kind      BackingKind `json:"kind"`
	Datastore *ObjectRef  `json:"datastore,omitempty"`
	FileName  string      `json:"file,omitempty"`
}

// DatastoreRef returns the datastore the backing lives on, if it has one.
func (b Backing) DatastoreRef() (ObjectRef, bool) {
	if b.Kind != BackingFile || b.Datastore == nil {
		return ObjectRef{}, false
	}
	return *b.Datastore, true
}

// Device is a single virtual hardware element of a machine.
type Device struct {
	Label   string     `json:"label"`
	Kind    DeviceKind `json:"kind"`
	Backing Backing    `json:"backing"`
}

// Machine is a virtual machine as seen by the scanner. HasConfig is false for
// machines whose configuration could not be resolved.
type Machine struct {
	Name      string    `json:"name"`
	Ref       ObjectRef `json:"ref"`
	HasConfig bool      `json:"has_config"`
	Devices   []Device  `json:"devices"`
}

// Match is a machine together with the devices that reference the datastore.
type Match struct {
	Name    string   `json:"name"`
	Devices []Device `json:"devices"`
}
