// Package ftp serves a dataset repository over FTP.
//
// A repository address is an ftp:// URL whose path is the repository root,
// for example ftp://ftp.imp.fu-berlin.de/pub/cmb-data/. Login is anonymous
// unless the URL or the options carry credentials.
//
// The underlying control connection carries one transfer at a time, so the
// reader returned by Open must be closed before the next call.
package ftp
