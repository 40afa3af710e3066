package standard

import (
	"github.com/zeusync/substrate/internal/core/behavior"
	"github.com/zeusync/substrate/internal/core/params"
)

// RenderEmitter collects properties into a bundle and submits it on Channel.
// Missing properties are left out; an empty bundle is not submitted.
type RenderEmitter struct {
	Channel    string
	Properties []string
	Globals    []string
}

var _ behavior.OutputEmitter = (*RenderEmitter)(nil)

func (r *RenderEmitter) Name() string { return "render" }

func (r *RenderEmitter) EmitOutput(ctx *behavior.OutputContext) error {
	bundle := make(params.Bundle, len(r.Properties)+len(r.Globals))
	for _, name := range r.Properties {
		if v, err := ctx.Local.Get(name); err == nil {
			bundle[name] = v
		}
	}
	for _, name := range r.Globals {
		if v, err := ctx.Global.Get(name); err == nil {
			bundle[name] = v
		}
	}
	if len(bundle) > 0 {
		ctx.Submit(r.Channel, bundle)
	}
	return nil
}
