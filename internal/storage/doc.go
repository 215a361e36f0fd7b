// Package storage provides file persistence inside the data directory.
//
// Downloaded report files are stored under their remote basename and summary
// output is written as indented UTF-8 JSON. The data directory (./data by
// default) is never created implicitly; a missing directory is an error.
package storage
