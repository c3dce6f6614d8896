package mongoconn

import (
	"context"
	"net/url"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// URIParams describes the deployment to connect to.
type URIParams struct {
	Scheme   string // "mongodb+srv" for Atlas, "mongodb" for a plain host list
	User     string
	Password string
	Host     string
	AppName  string
}

// BuildURI assembles a connection string. Credentials are percent-encoded
// so reserved characters such as '@', ':' and '/' survive.
func BuildURI(p URIParams) string {
	scheme := p.Scheme
	if scheme == "" {
		scheme = "mongodb+srv"
	}
	q := url.Values{}
	q.Set("retryWrites", "true")
	q.Set("w", "majority")
	if p.AppName != "" {
		q.Set("appName", p.AppName)
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     p.Host,
		Path:     "/",
		RawQuery: q.Encode(),
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}

// URIDialer returns a Dialer that connects to uri and verifies the primary
// answers a ping before handing the client over.
func URIDialer(uri string, maxPoolSize uint64) Dialer {
	return func(ctx context.Context) (*mongo.Client, error) {
		opts := options.Client().
			ApplyURI(uri).
			SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
			SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
		if maxPoolSize > 0 {
			opts.SetMaxPoolSize(maxPoolSize)
		}

		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return client, nil
	}
}
