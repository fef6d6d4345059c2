// Package classifier infers a device type and capability set from an
// interface name plus optional sysfs probe results.
//
// Rules are applied in a fixed priority order, name prefixes first and the
// sysfs wireless marker last:
//
//	lo                    loopback
//	wlan*, wlp*           wifi
//	eth*, en*, eno*       wifi if the driver looks wireless, else ethernet
//	br-*, bridge*         bridge
//	vlan*                 vlan
//	tun*, tap*            tuntap
//	veth*                 veth, or container for long endpoint names
//	bond*                 bond
//	docker*               container
//	ppp*                  ppp
//	wg*                   vpn
//	(wireless marker)     wifi
//	anything else         unknown
package classifier
