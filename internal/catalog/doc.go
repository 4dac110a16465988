// Package catalog models the file catalogue published by a dataset repository.
//
// A repository exposes a YAML document, mdshare-catalogue.yaml, at its root.
// It lists plain files under "index" and tar.gz bundles under "containers":
//
//	index:
//	  alanine-dipeptide-nowater.pdb:
//	    size: 9933
//	    checksum: 1c9e...
//	containers:
//	  alanine-dipeptide-3x250ns-backbone-dihedrals.tar.gz:
//	    size: 1234
//	    checksum: 77ab...
//	    files: [a.npy, b.npy]
//
// # Resolving patterns
//
// Resolve turns an ordered list of glob patterns into a Plan. Each pattern is
// resolved on its own, so a file matched by two patterns appears twice and
// is counted twice in Plan.Total.
package catalog
