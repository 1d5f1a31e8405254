// Package all registers every format in this module with the format
// registry.
package all

import (
	_ "github.com/WalkNetwork/serializer-framework/format/cbor"
	_ "github.com/WalkNetwork/serializer-framework/format/json"
	_ "github.com/WalkNetwork/serializer-framework/format/msgpack"
	_ "github.com/WalkNetwork/serializer-framework/format/protobuf"
	_ "github.com/WalkNetwork/serializer-framework/format/toml"
	_ "github.com/WalkNetwork/serializer-framework/format/yaml"
)
