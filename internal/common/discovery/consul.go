package discovery

import (
	"fmt"
	"time"

	"github.com/hashicorp/consul/api"
	"google.golang.org/grpc/resolver"
)

const consulScheme = "consul"

// Builder 实现 gRPC 的 resolver.Builder，scheme 为 consul。
// 注册后客户端可以用 consul:///<service> 形式的 target 拨号，
// 地址列表由 Consul 健康实例实时驱动。
type Builder struct {
	client *api.Client
}

// RegisterBuilder 全局注册 consul resolver。进程内注册一次即可。
func RegisterBuilder(client *api.Client) {
	resolver.Register(&Builder{client: client})
}

func (b *Builder) Scheme() string {
	return consulScheme
}

func (b *Builder) Build(target resolver.Target, cc resolver.ClientConn, _ resolver.BuildOptions) (resolver.Resolver, error) {
	service := target.Endpoint()
	if service == "" {
		return nil, fmt.Errorf("consul resolver: empty service name in target %q", target.URL.String())
	}
	w := &watcher{
		client:  b.client,
		service: service,
		cc:      cc,
		done:    make(chan struct{}),
	}
	go w.watch()
	return w, nil
}

// watcher 用 Consul 阻塞查询跟踪某个服务的健康实例集合。
type watcher struct {
	client    *api.Client
	service   string
	cc        resolver.ClientConn
	lastIndex uint64
	done      chan struct{}
}

func (w *watcher) ResolveNow(resolver.ResolveNowOptions) {}

func (w *watcher) Close() {
	close(w.done)
}

func (w *watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		default:
		}

		services, meta, err := w.client.Health().Service(w.service, "", true, &api.QueryOptions{
			WaitIndex: w.lastIndex,
			WaitTime:  30 * time.Second,
		})
		if err != nil {
			// Consul 暂时不可用时退避重试，保留上一次的地址列表
			time.Sleep(2 * time.Second)
			continue
		}
		if meta.LastIndex == w.lastIndex {
			continue
		}
		w.lastIndex = meta.LastIndex

		addrs := make([]resolver.Address, 0, len(services))
		for _, svc := range services {
			host := svc.Service.Address
			if host == "" {
				host = svc.Node.Address
			}
			addrs = append(addrs, resolver.Address{
				Addr: fmt.Sprintf("%s:%d", host, svc.Service.Port),
			})
		}
		if len(addrs) > 0 {
			_ = w.cc.UpdateState(resolver.State{Addresses: addrs})
		}
	}
}

// ServiceRegistry 把本服务注册进 Consul，并挂 gRPC 健康检查。
type ServiceRegistry struct {
	client    *api.Client
	serviceID string
	service   string
	address   string
	port      int
	tags      []string
	check     *api.AgentServiceCheck
}

// NewServiceRegistry 创建服务注册器
func NewServiceRegistry(client *api.Client, serviceID, service, address string, port int, tags []string) *ServiceRegistry {
	return &ServiceRegistry{
		client:    client,
		serviceID: serviceID,
		service:   service,
		address:   address,
		port:      port,
		tags:      tags,
		check: &api.AgentServiceCheck{
			GRPC:                           fmt.Sprintf("%s:%d", address, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// Register 注册服务
func (r *ServiceRegistry) Register() error {
	registration := &api.AgentServiceRegistration{
		ID:      r.serviceID,
		Name:    r.service,
		Tags:    r.tags,
		Address: r.address,
		Port:    r.port,
		Check:   r.check,
	}

	return r.client.Agent().ServiceRegister(registration)
}

// Deregister 注销服务
func (r *ServiceRegistry) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}

// NewConsulClient 创建Consul客户端
func NewConsulClient(host string, port int) (*api.Client, error) {
	config := api.DefaultConfig()
	config.Address = fmt.Sprintf("%s:%d", host, port)
	return api.NewClient(config)
}
