// Package filestore keeps uploaded and generated images on local disk and
// turns them into public URLs served under /uploads/.
package filestore
