package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// JSONCodecName gRPC content-subtype 名称。客户端用
// grpc.CallContentSubtype(JSONCodecName) 发起调用。
const JSONCodecName = "json"

// jsonCodec 让手写的 api 绑定（internal/api/*v1）无需 protoc 即可上线：
// 消息用 encoding/json 编解码。业务 proto 流水线接入后移除。
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if v == nil {
		return fmt.Errorf("json codec: nil target")
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return JSONCodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
