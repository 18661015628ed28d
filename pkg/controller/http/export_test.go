package http

var WriteJSON = writeJSON
