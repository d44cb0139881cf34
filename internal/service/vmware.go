package service

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/config"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/logger"
	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/models"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
	"github.com/vmware/govmomi/vim25/types"
)

const (
	kindDatacenter     = "Datacenter"
	kindFolder         = "Folder"
	kindVirtualMachine = "VirtualMachine"
)

// VMwareService reads the vSphere inventory over a govmomi session.
type VMwareService struct {
	session *govmomi.Client
	client  *vim25.Client
	logger  *logger.Logger
}

// NewVMwareService logs in to the endpoint described by cfg.
func NewVMwareService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*VMwareService, error) {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	u, err := soap.ParseURL(cfg.ServerURL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	u.User = url.UserPassword(cfg.ESXiUsername, cfg.ESXiPassword)

	client, err := govmomi.NewClient(ctx, u, cfg.ESXiInsecure)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	log.Info("Connected", logger.Action("connect"), logger.Status("connected"),
		logger.Server(u.Host), logger.F("PRODUCT", client.ServiceContent.About.FullName))

	return &VMwareService{
		session: client,
		client:  client.Client,
		logger:  log,
	}, nil
}

// NewVMwareServiceFromClient wraps an already authenticated client. Close
// does not log it out.
func NewVMwareServiceFromClient(c *vim25.Client, log *logger.Logger) *VMwareService {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	return &VMwareService{
		client: c,
		logger: log,
	}
}

// Connect adapts NewVMwareService to a Session.
func Connect(ctx context.Context, cfg *config.Config, log *logger.Logger) (Session, error) {
	return NewVMwareService(ctx, cfg, log)
}

// Close logs out of the session opened by NewVMwareService.
func (s *VMwareService) Close(ctx context.Context) error {
	if s.session == nil {
		return nil
	}
	if err := s.session.Logout(ctx); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func (s *VMwareService) collector() *property.Collector {
	return property.DefaultCollector(s.client)
}

// Datacenters lists every datacenter below the root folder, including those in nested folders.
func (s *VMwareService) Datacenters(ctx context.Context) ([]models.Datacenter, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	var dcs []models.Datacenter
	if err := s.walkFolder(ctx, s.client.ServiceContent.RootFolder, &dcs); err != nil {
		return nil, err
	}
	return dcs, nil
}

// walkFolder appends the datacenters below folder depth first, in childEntity order.
func (s *VMwareService) walkFolder(ctx context.Context, folder types.ManagedObjectReference, out *[]models.Datacenter) error {
	var f mo.Folder
	if err := s.collector().RetrieveOne(ctx, folder, []string{"childEntity"}, &f); err != nil {
		return fmt.Errorf("failed to list folder %s: %w", folder.Value, err)
	}
	for _, child := range f.ChildEntity {
		switch child.Type {
		case kindDatacenter:
			var dc mo.Datacenter
			if err := s.collector().RetrieveOne(ctx, child, []string{"name"}, &dc); err != nil {
				return fmt.Errorf("failed to get datacenter %s: %w", child.Value, err)
			}
			*out = append(*out, models.Datacenter{Name: dc.Name, Ref: toRef(child)})
		case kindFolder:
			if err := s.walkFolder(ctx, child, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Datastores lists the datastores of dc in the order the datacenter reports them.
func (s *VMwareService) Datastores(ctx context.Context, dc models.Datacenter) ([]models.Datastore, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	var mdc mo.Datacenter
	if err := s.collector().RetrieveOne(ctx, fromRef(dc.Ref), []string{"datastore"}, &mdc); err != nil {
		return nil, fmt.Errorf("failed to get datastores of %s: %w", dc.Name, err)
	}
	if len(mdc.Datastore) == 0 {
		return nil, nil
	}

	var dss []mo.Datastore
	if err := s.collector().Retrieve(ctx, mdc.Datastore, []string{"name"}, &dss); err != nil {
		return nil, fmt.Errorf("failed to get datastore names of %s: %w", dc.Name, err)
	}
	names := make(map[string]string, len(dss))
	for _, ds := range dss {
		names[ds.Self.Value] = ds.Name
	}

	datastores := make([]models.Datastore, 0, len(mdc.Datastore))
	for _, ref := range mdc.Datastore {
		name, ok := names[ref.Value]
		if !ok {
			continue
		}
		datastores = append(datastores, models.Datastore{Name: name, Ref: toRef(ref)})
	}
	s.logger.Debug("Datastores listed", logger.Datacenter(dc.Name), logger.Count(len(datastores)))
	return datastores, nil
}

// Machines lists every virtual machine in the inventory with its devices.
func (s *VMwareService) Machines(ctx context.Context) ([]models.Machine, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	m := view.NewManager(s.client)
	v, err := m.CreateContainerView(ctx, s.client.ServiceContent.RootFolder, []string{kindVirtualMachine}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create container view: %w", err)
	}
	defer func() {
		if err := v.Destroy(ctx); err != nil {
			s.logger.Warn("Failed to destroy container view", logger.Error(err))
		}
	}()

	var vms []mo.VirtualMachine
	if err := v.Retrieve(ctx, []string{kindVirtualMachine}, []string{"name", "config.hardware.device"}, &vms); err != nil {
		return nil, fmt.Errorf("failed to list virtual machines: %w", err)
	}

	machines := make([]models.Machine, 0, len(vms))
	for _, vm := range vms {
		machines = append(machines, convertMachine(vm))
	}
	s.logger.Debug("Virtual machines listed", logger.Count(len(machines)))
	return machines, nil
}

func convertMachine(vm mo.VirtualMachine) models.Machine {
	machine := models.Machine{
		Name: vm.Name,
		Ref:  toRef(vm.Self),
	}
	if vm.Config == nil {
		return machine
	}
	machine.HasConfig = true
	for _, d := range vm.Config.Hardware.Device {
		machine.Devices = append(machine.Devices, convertDevice(d))
	}
	return machine
}

func convertDevice(d types.BaseVirtualDevice) models.Device {
	dev := d.GetVirtualDevice()
	device := models.Device{
		Kind:    deviceKind(d),
		Backing: convertBacking(dev.Backing),
	}
	if dev.DeviceInfo != nil {
		device.Label = dev.DeviceInfo.GetDescription().Label
	}
	return device
}

func deviceKind(d types.BaseVirtualDevice) models.DeviceKind {
	switch d.(type) {
	case *types.VirtualDisk:
		return models.DeviceKindDisk
	case *types.VirtualCdrom:
		return models.DeviceKindCdrom
	case *types.VirtualFloppy:
		return models.DeviceKindFloppy
	default:
		return models.DeviceKindOther
	}
}

func convertBacking(b types.BaseVirtualDeviceBackingInfo) models.Backing {
	switch info := b.(type) {
	case types.BaseVirtualDeviceFileBackingInfo:
		fb := info.GetVirtualDeviceFileBackingInfo()
		backing := models.Backing{Kind: models.BackingFile, FileName: fb.FileName}
		if fb.Datastore != nil {
			ref := toRef(*fb.Datastore)
			backing.Datastore = &ref
		}
		return backing
	case types.BaseVirtualDeviceDeviceBackingInfo:
		return models.Backing{Kind: models.BackingDevice}
	default:
		return models.Backing{Kind: models.BackingUnknown}
	}
}

func toRef(ref types.ManagedObjectReference) models.ObjectRef {
	return models.ObjectRef{Type: ref.Type, Value: ref.Value}
}

func fromRef(ref models.ObjectRef) types.ManagedObjectReference {
	return types.ManagedObjectReference{Type: ref.Type, Value: ref.Value}
}
