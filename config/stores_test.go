package config

import "testing"

func TestRedisOptions(t *testing.T) {
	opt, err := redisOptions("localhost:6379")
	if err != nil || opt.Addr != "localhost:6379" || opt.ClientName != "jobbo" {
		t.Fatalf("plain addr = %+v, %v", opt, err)
	}

	opt, err = redisOptions("redis://:pw@cache.internal:6380/2")
	if err != nil {
		t.Fatal(err)
	}
	if opt.Addr != "cache.internal:6380" || opt.DB != 2 || opt.Password != "pw" {
		t.Fatalf("url = %+v", opt)
	}

	if _, err := redisOptions(""); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestMongoOptions(t *testing.T) {
	t.Setenv("MONGO_MAX_POOL", "")
	t.Setenv("MONGO_FORCE_TLS_CONFIG", "")

	opts, err := mongoOptions("mongodb://localhost:27017")
	if err != nil {
		t.Fatal(err)
	}
	if *opts.MaxPoolSize != defaultMongoPoolSize || *opts.AppName != "jobbo" || opts.TLSConfig != nil {
		t.Fatalf("defaults = pool %d app %q tls %v", *opts.MaxPoolSize, *opts.AppName, opts.TLSConfig)
	}

	t.Setenv("MONGO_MAX_POOL", "25")
	t.Setenv("MONGO_FORCE_TLS_CONFIG", "true")
	opts, err = mongoOptions("mongodb://localhost:27017")
	if err != nil {
		t.Fatal(err)
	}
	if *opts.MaxPoolSize != 25 || opts.TLSConfig == nil {
		t.Fatalf("overrides = pool %d tls %v", *opts.MaxPoolSize, opts.TLSConfig)
	}

	t.Setenv("MONGO_MAX_POOL", "lots")
	if _, err := mongoOptions("mongodb://localhost:27017"); err == nil {
		t.Fatal("expected error for bad pool size")
	}
}
