package tools

import (
	"go.uber.org/zap"

	"wpmcp/internal/domain"
	"wpmcp/internal/infra/hooks"
	"wpmcp/internal/infra/toolgen"
)

// Dependencies are the collaborators the built-in tools need.
type Dependencies struct {
	Host      domain.HostConfig
	Comments  domain.CommentStore
	Generator *toolgen.Generator
	Logger    *zap.Logger
}

// Set is a named group of tools registered together.
type Set struct {
	Name  string
	Tools []domain.Tool
}

// Sets returns the tool sets enabled by cfg, in registration order.
func Sets(cfg domain.ToolSetConfig, deps Dependencies) []Set {
	var sets []Set
	if cfg.Site {
		sets = append(sets, Set{
			Name:  domain.ToolSetSite,
			Tools: []domain.Tool{NewVersionInfoTool(deps.Host)},
		})
	}
	if cfg.Boilerplate {
		sets = append(sets, Set{
			Name: domain.ToolSetBoilerplate,
			Tools: []domain.Tool{
				NewCommentsTool(deps.Comments, deps.Logger),
				NewCreateToolTool(deps.Generator, deps.Logger),
			},
		})
	}
	return sets
}

// Subscribe attaches every enabled set to the init signal.
func Subscribe(signal *hooks.Init, cfg domain.ToolSetConfig, deps Dependencies) error {
	for _, set := range Sets(cfg, deps) {
		tools := set.Tools
		if err := signal.OnInit(set.Name, func(reg domain.Registry) error {
			return RegisterAll(reg, tools...)
		}); err != nil {
			return err
		}
	}
	return nil
}

// Descriptors lists the enabled tools without registering them.
func Descriptors(cfg domain.ToolSetConfig, deps Dependencies) []domain.ToolDescriptor {
	var out []domain.ToolDescriptor
	for _, set := range Sets(cfg, deps) {
		for _, tool := range set.Tools {
			out = append(out, domain.ToolDescriptor{
				Name:        tool.Name(),
				Description: tool.Description(),
				Type:        tool.Type(),
				InputSchema: tool.InputSchema(),
				Annotations: tool.Annotations(),
			})
		}
	}
	return out
}
