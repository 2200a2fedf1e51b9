package tools

import "wpmcp/internal/domain"

// Register builds the registration record for tool and hands it to reg.
func Register(reg domain.Registry, tool domain.Tool) error {
	if reg == nil {
		return domain.ErrRegistryNotReady
	}
	return reg.Register(domain.Registration{
		Name:               tool.Name(),
		Description:        tool.Description(),
		Type:               tool.Type(),
		InputSchema:        tool.InputSchema(),
		Callback:           tool.Execute,
		PermissionCallback: tool.Permission,
		Annotations:        tool.Annotations(),
	})
}

// RegisterAll registers tools in order and stops at the first failure.
func RegisterAll(reg domain.Registry, tools ...domain.Tool) error {
	for _, tool := range tools {
		if err := Register(reg, tool); err != nil {
			return err
		}
	}
	return nil
}
