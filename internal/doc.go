// Package internal runs contract verification over assembly listings.
//
// Engine loads a listing, builds the control-flow graph of every selected
// method, and evaluates the method's proof obligations. Methods using
// constructs the graph builder does not model are skipped; methods whose
// exception regions or old-value regions are malformed are reported with
// an error and do not stop the run.
//
// Results can be cached on disk, keyed by the content hash of the listing,
// and listings can be watched for changes.
//
// Usage:
//
//	engine, err := internal.NewEngine(logger, internal.Options{InheritContracts: true})
//	if err != nil {
//	    // handle error
//	}
//
//	reports, err := engine.Run("path/to/listing.yaml")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, r := range reports {
//	    fmt.Println(r.Method)
//	    for _, line := range r.Lines {
//	        fmt.Println("  " + line)
//	    }
//	}
package internal
