package service

import (
	"context"

	"github.com/EpicMandM/esxi-lab-provider/dsusage/internal/models"
)

// Inventory abstracts the vSphere inventory reads for testability.
type Inventory interface {
	// Datacenters lists datacenters under the root folder in traversal order.
	Datacenters(ctx context.Context) ([]models.Datacenter, error)
	// Datastores lists the datastores of dc in the order the datacenter holds them.
	Datastores(ctx context.Context, dc models.Datacenter) ([]models.Datastore, error)
	// Machines lists every virtual machine in the inventory.
	Machines(ctx context.Context) ([]models.Machine, error)
}

// Session is an Inventory bound to an authenticated connection.
type Session interface {
	Inventory
	Close(ctx context.Context) error
}
