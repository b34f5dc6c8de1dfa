// Package zone implements the gRPC transport of the zone controller.
//
// The service is described by hand with well-known protobuf types: the zone
// state travels as a google.protobuf.Struct, so no generated code is needed
// on either side. The server adapts a business-service interface, and the
// client stub is used by the command line tools.
package zone
