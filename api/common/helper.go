package common

import (
	"fmt"

	"github.com/nknorg/ballot/common"
)

func getAddressParam(params map[string]interface{}, key string) (common.Uint160, error) {
	str, ok := params[key].(string)
	if !ok {
		return common.EmptyUint160, fmt.Errorf("%s should be a string", key)
	}
	addr, err := common.ToScriptHash(str)
	if err != nil {
		return common.EmptyUint160, fmt.Errorf("invalid %s: %v", key, err)
	}
	return addr, nil
}

func getAddressListParam(params map[string]interface{}, key string) ([]common.Uint160, error) {
	list, ok := params[key].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s should be a list of address", key)
	}
	addrs := make([]common.Uint160, 0, len(list))
	for i, v := range list {
		str, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s[%d] should be a string", key, i)
		}
		addr, err := common.ToScriptHash(str)
		if err != nil {
			return nil, fmt.Errorf("invalid %s[%d]: %v", key, i, err)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// getUint32Param accepts JSON numbers, which arrive as float64.
func getUint32Param(params map[string]interface{}, key string) (uint32, error) {
	f, ok := params[key].(float64)
	if !ok {
		return 0, fmt.Errorf("%s should be a number", key)
	}
	if f < 0 || f > float64(^uint32(0)) || f != float64(uint32(f)) {
		return 0, fmt.Errorf("%s is not a valid uint32", key)
	}
	return uint32(f), nil
}

// getFixed64Param reads a decimal string such as "0.005".
func getFixed64Param(params map[string]interface{}, key string) (common.Fixed64, error) {
	str, ok := params[key].(string)
	if !ok {
		return 0, fmt.Errorf("%s should be a decimal string", key)
	}
	value, err := common.StringToFixed64(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", key, err)
	}
	return value, nil
}
