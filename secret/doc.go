// Package secret resolves credentials embedded in configuration values.
//
// The remote cache endpoint often carries a password. Instead of writing it
// into a config file, reference it:
//
//	remote_endpoint: redis://:${REDIS_PASSWORD}@cache:6379/0
//	remote_endpoint: secretref:file:/run/secrets/cache_url
//	remote_endpoint: rediss://default:secretref:env:REDIS_PASSWORD@cache:6380
//
// ${VAR} must be set or resolution fails. $$ is a literal dollar sign.
// secretref:<provider>:<ref> is looked up through a registered Provider,
// either as the whole value or inline.
package secret
