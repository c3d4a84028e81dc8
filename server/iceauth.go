package server

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"time"
)

// ICECredentialTTL is how long the credentials handed out for servers with
// AuthTypeSecret stay valid.
const ICECredentialTTL = 24 * time.Hour

// ICEAuthServer is an RTCIceServer as expected by browsers.
type ICEAuthServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

func GetICEAuthServers(servers []ICEServer, now time.Time) []ICEAuthServer {
	result := make([]ICEAuthServer, 0, len(servers))

	for _, server := range servers {
		result = append(result, getICEServer(server, now))
	}

	return result
}

func getICEServer(server ICEServer, now time.Time) ICEAuthServer {
	switch server.AuthType {
	case AuthTypeSecret:
		return getICEStaticAuthSecretCredentials(server, now)
	default:
		return ICEAuthServer{URLs: server.URLs}
	}
}

// getICEStaticAuthSecretCredentials creates time limited credentials in the
// format of the TURN REST API: the username is the expiry unix timestamp
// followed by the configured user, and the credential is the base64 encoded
// HMAC-SHA1 of the username keyed with the shared secret.
func getICEStaticAuthSecretCredentials(server ICEServer, now time.Time) ICEAuthServer {
	expiry := now.Add(ICECredentialTTL).Unix()
	username := fmt.Sprintf("%d:%s", expiry, server.AuthSecret.Username)

	h := hmac.New(sha1.New, []byte(server.AuthSecret.Secret))
	h.Write([]byte(username))

	credential := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return ICEAuthServer{
		URLs:       server.URLs,
		Username:   username,
		Credential: credential,
	}
}
