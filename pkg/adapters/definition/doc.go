/*
Package definition loads machines described in YAML or JSON.

A definition lists states, choicepoints and transitions; callbacks are
referenced by name and resolved through a registry.Registry:

	name: scanner
	states:
	  - id: menu
	  - id: scanning
	    parent: menu
	  - id: results
	choicepoints:
	  - id: has-scan
	    decision: flag:scanned
	transitions:
	  - {event: scan, from: menu, to: scanning, action: set:scanned}
	  - {event: done, from: scanning, to: menu}
	  - {event: show, from: menu, to: has-scan}
	  - {event: back, from: results, to: menu}
	  - {from: has-scan, branch: true, to: results}
	  - {from: has-scan, branch: false, to: menu}
*/
package definition
