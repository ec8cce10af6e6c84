package registry

import (
	"net/http"

	"github.com/dukex/flowdeck/pkg/llm"
	"github.com/dukex/flowdeck/pkg/nodes/chat"
	"github.com/dukex/flowdeck/pkg/nodes/code"
	"github.com/dukex/flowdeck/pkg/nodes/conditional"
	"github.com/dukex/flowdeck/pkg/nodes/httprequest"
	"github.com/dukex/flowdeck/pkg/nodes/passthrough"
	"github.com/dukex/flowdeck/pkg/nodes/texttemplate"
	"github.com/dukex/flowdeck/pkg/nodes/variable"
	"github.com/dukex/flowdeck/pkg/secrets"
)

// Collaborators are the external clients built-in nodes delegate to. Nil
// fields are allowed.
type Collaborators struct {
	HTTPClient  *http.Client
	LocalModel  llm.ChatClient
	RemoteModel llm.ChatClient
	Vault       secrets.Vault
}

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes(collaborators Collaborators) {
	r.RegisterNode(passthrough.NewStartNodeFactory())
	r.RegisterNode(passthrough.NewEndNodeFactory())
	r.RegisterNode(chat.NewLLMNodeFactory(collaborators.LocalModel, collaborators.RemoteModel, collaborators.Vault))
	r.RegisterNode(httprequest.NewHTTPRequestNodeFactory(collaborators.HTTPClient))
	r.RegisterNode(texttemplate.NewTemplateNodeFactory())
	r.RegisterNode(conditional.NewConditionalNodeFactory())
	r.RegisterNode(variable.NewVariableNodeFactory())
	r.RegisterNode(code.NewCodeNodeFactory())
}
