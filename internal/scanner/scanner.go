package scanner

import (
	"context"
	"io"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/logger"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/models"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/service"
	"github.com/thoas/go-funk"
)

// Status is the outcome of a scan.
type Status string

const (
	StatusFound    Status = "found"
	StatusUnused   Status = "unused"
	StatusNotFound Status = "not_found"
)

// Result is what a scan produced. Matches keep inventory traversal order.
type Result struct {
	Datastore  string
	Datacenter string
	Resolved   *models.Datastore
	Matches    []models.Match
	Status     Status
}

// Names returns the names of the matching machines.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		names = append(names, m.Name)
	}
	return names
}

// Scanner finds the virtual machines whose devices live on a datastore.
type Scanner struct {
	Inventory service.Inventory
	Logger    *logger.Logger
	Kinds     []models.DeviceKind
}

// New returns a Scanner over inv. With no kinds, disks and CD-ROMs are inspected.
func New(inv service.Inventory, log *logger.Logger, kinds ...models.DeviceKind) *Scanner {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	if len(kinds) == 0 {
		kinds = models.DefaultDeviceKinds
	}
	return &Scanner{
		Inventory: inv,
		Logger:    log,
		Kinds:     kinds,
	}
}

// FindMachinesUsingDatastore resolves the datastore called name and returns
// every machine with a scanned device backed by it. A datastore that does not
// exist is reported through Result.Status, not as an error.
func (s *Scanner) FindMachinesUsingDatastore(ctx context.Context, name string) (*Result, error) {
	if name == "" {
		return nil, &ValidationError{Field: "datastore", Reason: "name is empty"}
	}

	result := &Result{Datastore: name}

	s.Logger.Info("Resolving datastore", logger.Action("resolve"), logger.Datastore(name))
	dc, ds, err := ResolveDatastore(ctx, s.Inventory, name)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		s.Logger.Info("Datastore not found", logger.Action("resolve"), logger.Status("not_found"), logger.Datastore(name))
		result.Status = StatusNotFound
		return result, nil
	}
	result.Datacenter = dc.Name
	result.Resolved = ds
	s.Logger.Debug("Datastore resolved", logger.Datastore(name), logger.Datacenter(dc.Name), logger.F("REF", ds.Ref))

	machines, err := s.Inventory.Machines(ctx)
	if err != nil {
		return nil, &RemoteFault{Op: "list virtual machines", Err: err}
	}

	for _, m := range machines {
		if !m.HasConfig {
			continue
		}
		devices := MatchDevices(m, ds.Ref, s.Kinds)
		if len(devices) == 0 {
			continue
		}
		for _, d := range devices {
			s.Logger.Debug("Device on datastore", logger.VM(m.Name), logger.Kind(string(d.Kind)), logger.F("FILE", d.Backing.FileName))
		}
		result.Matches = append(result.Matches, models.Match{Name: m.Name, Devices: devices})
	}

	result.Status = StatusUnused
	if len(result.Matches) > 0 {
		result.Status = StatusFound
	}
	s.Logger.Info("Scan completed", logger.Action("scan"), logger.Status(string(result.Status)),
		logger.Datastore(name), logger.F("MACHINES", len(machines)), logger.Count(len(result.Matches)))
	return result, nil
}

// ResolveDatastore walks datacenters in traversal order and returns the first
// datastore whose name equals name exactly. A nil datastore with a nil error
// means no datacenter has it.
func ResolveDatastore(ctx context.Context, inv service.Inventory, name string) (*models.Datacenter, *models.Datastore, error) {
	dcs, err := inv.Datacenters(ctx)
	if err != nil {
		return nil, nil, &RemoteFault{Op: "list datacenters", Err: err}
	}
	for i := range dcs {
		dss, err := inv.Datastores(ctx, dcs[i])
		if err != nil {
			return nil, nil, &RemoteFault{Op: "list datastores", Err: err}
		}
		for j := range dss {
			if dss[j].Name == name {
				return &dcs[i], &dss[j], nil
			}
		}
	}
	return nil, nil, nil
}

// MatchDevices returns the devices of m whose kind is in kinds and whose
// backing lives on the datastore ref. Machines without configuration and
// backings without a datastore never match, and neither does a zero ref.
func MatchDevices(m models.Machine, ref models.ObjectRef, kinds []models.DeviceKind) []models.Device {
	if !m.HasConfig || ref.IsZero() {
		return nil
	}
	var matched []models.Device
	for _, d := range m.Devices {
		if !funk.Contains(kinds, d.Kind) {
			continue
		}
		ds, ok := d.Backing.DatastoreRef()
		if !ok {
			continue
		}
		if ds == ref {
			matched = append(matched, d)
		}
	}
	return matched
}
