package httpclient

import "encoding/base64"

// HeaderAuthorization is the standard credentials header
const HeaderAuthorization = "Authorization"

// Bearer returns the Authorization value for a bearer token.
func Bearer(token string) string {
	return "Bearer " + token
}

// Basic returns the Authorization value for HTTP basic credentials.
func Basic(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// APIKey returns the header name and value carrying an API key.
func APIKey(headerName, key string) (string, string) {
	return headerName, key
}
