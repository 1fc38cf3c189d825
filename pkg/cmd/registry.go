// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/validoc/validoc/pkg/actions/copyfile"
	"github.com/validoc/validoc/pkg/actions/movefile"
	"github.com/validoc/validoc/pkg/actions/notifyuser"
	"github.com/validoc/validoc/pkg/actions/sendcomment"
	"github.com/validoc/validoc/pkg/actions/updatemetadata"
	"github.com/validoc/validoc/pkg/actions/webhook"
	"github.com/validoc/validoc/pkg/registry"
)

// NewRegistry returns a registry with every native action factory registered.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)

	reg.RegisterAction(movefile.NewActionFactory())
	reg.RegisterAction(copyfile.NewActionFactory())
	reg.RegisterAction(notifyuser.NewActionFactory())
	reg.RegisterAction(sendcomment.NewActionFactory())
	reg.RegisterAction(updatemetadata.NewActionFactory())
	reg.RegisterAction(webhook.NewActionFactory())

	return reg
}
