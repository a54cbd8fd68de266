// Package importer reads evidence bundles produced by a crawler.
//
// A bundle is a JSON or YAML document holding the scanned URL and its
// evidence records:
//
//	url: https://www.example.com/
//	evidence:
//	  - kind: tracker
//	    details: {domain: google-analytics.com}
//	  - kind: policy
//	    details: {}
//
// A bare list of records is accepted too, in which case the URL has to be
// supplied by the caller. Record details are stored as JSON regardless of the
// input format, since that is what the scoring engine decodes.
package importer
