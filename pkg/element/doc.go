// Package element hosts components as custom elements.
//
// An Application registers every component reachable from its bootstrap
// definitions with the document. When a component element connects, its
// Host creates the instance through the injector, wires inputs and outputs,
// scopes styles and renders the template inside one render effect.
// Directives declared by the component are applied after every render.
//
//	app := element.NewApplication(doc, injector)
//	if err := app.Bootstrap(rootDef); err != nil {
//		return err
//	}
//	el, err := app.Mount("app-root", doc.Body())
package element
