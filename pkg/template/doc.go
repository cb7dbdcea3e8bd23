// Package template renders compiled component templates into the DOM.
//
// Rendering parses the template into a detached fragment, expands
// structural markers depth-first, binds every element while the tree is
// still detached, then moves the result into the target. Structural
// regions are bounded by a pair of comment nodes:
//
//	<li *ngFor="let item of items(); let i = index">{{ i }}: {{ item }}</li>
//	<p *ngIf="user() as u">{{ u.name }}</p>
//	<select><!--F:opt:options()--><option [attr.value]="opt">{{ opt }}</option><!--/F--></select>
//
// The comment form survives the HTML parser inside elements such as
// select whose content model drops unknown wrappers.
package template
